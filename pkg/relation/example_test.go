package relation_test

import (
	"fmt"

	"relstore/pkg/keys"
	"relstore/pkg/relation"
)

func Example() {
	env := relation.NewEnv(relation.DefaultConfig())

	movie, _ := relation.NewTableFromStrings(env, "movie",
		"title year length genre studioName producerNo",
		"String Integer Integer String String Integer",
		"title year")
	_ = movie.InsertValues("Star_Wars", 1977, 124, "sciFi", "Fox", 12345)
	_ = movie.InsertValues("Star_Wars_2", 1980, 124, "sciFi", "Fox", 12345)

	key, _ := keys.FromValues("Star_Wars", 1977)
	for r := range movie.SelectKey(key).All() {
		fmt.Println(r)
	}

	titles, _ := movie.Project("title")
	fmt.Println(titles.Name(), titles.Len())
	// Output:
	// Star_Wars	1977	124	sciFi	Fox	12345
	// movie1 2
}
