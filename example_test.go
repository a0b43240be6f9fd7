package magicurl_test

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/magicurl"
)

func Example() {
	doc := magicurl.NewDocument("")
	magicurl.New(doc, magicurl.DefaultConfig())

	for _, r := range "see http://example.com " {
		if err := doc.InsertText(string(r)); err != nil {
			panic(err)
		}
	}

	out, err := json.Marshal(doc.Contents())
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
	// Output: {"ops":[{"insert":"see "},{"insert":"http://example.com","attributes":{"link":"http://example.com"}},{"insert":" "}]}
}

func ExampleRewriter_Paste() {
	r := magicurl.NewRewriter(magicurl.DefaultConfig())
	d, ok, err := r.Paste("watch https://youtu.be/abc123")
	if err != nil || !ok {
		panic("no match")
	}
	for _, op := range d.Ops {
		if op.Embed != nil {
			fmt.Println(op.Embed.Key, op.Embed.Value)
		}
	}
	// Output: video https://www.youtube.com/embed/abc123
}
