package layout_test

import (
	"context"
	"os"
	"strings"

	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/place"
)

func ExampleWriteText() {
	nl, err := netlist.Parse(strings.NewReader(`gA 2 2
gB 2 2
gC 3 1
pins gA 0 0
pins gB 0 0 2 2
pins gC 1 0
wire gA.p1 gB.p1
wire gB.p2 gC.p1
`))
	if err != nil {
		panic(err)
	}
	p, err := place.Place(context.Background(), nl, place.Options{})
	if err != nil {
		panic(err)
	}
	if err := layout.WriteText(os.Stdout, layout.FromPlacement(nl, p)); err != nil {
		panic(err)
	}
	// Output:
	// Total Wire Length: 3
	// bounding_box 4 3
	// gB 0 0
	// gC 0 2
	// gA 2 0
}
