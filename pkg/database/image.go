package database

import (
	"relstore/pkg/relation"
	"relstore/pkg/storage/snapshot"
	"relstore/pkg/types"
)

// ImageOf captures the schema and current rows of t.
func ImageOf(t *relation.Table) *snapshot.Image {
	s := t.Schema()
	rows := t.Tuples()

	img := &snapshot.Image{
		Name:       t.Name(),
		Attributes: s.Attributes(),
		Types:      s.Types(),
		Key:        s.Key(),
		Rows:       make([][]types.Field, 0, len(rows)),
	}
	for _, r := range rows {
		img.Rows = append(img.Rows, r.Fields())
	}
	return img
}

// TableFromImage rebuilds an indexed base table from img. Rows are inserted
// in their saved order, so the index ends up as it was before the save.
func TableFromImage(env *relation.Env, img *snapshot.Image) (*relation.Table, error) {
	t, err := relation.NewTable(env, img.Name, img.Attributes, img.Types, img.Key)
	if err != nil {
		return nil, err
	}
	for _, row := range img.Rows {
		if err := t.Insert(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
