package layout_test

import (
	"fmt"

	"github.com/matzehuels/greetcard/pkg/layout"
)

func ExampleCompute() {
	slot := layout.Slot{X: 800, Y: 200, MaxWidth: 1200, Height: 300, FontSize: 72, Color: "#0b3d91"}

	res, err := layout.Compute("Mrs. Eleanor Vance", slot)
	if err != nil {
		panic(err)
	}

	fmt.Println("lines:", res.Lines)
	fmt.Println("font size:", res.FontSize)
	fmt.Println("line height:", res.LineHeight)
	fmt.Println("start y:", res.StartY)
	for i, y := range res.LineY {
		fmt.Printf("line %d at y=%v\n", i, y)
	}
	// Output:
	// lines: [Mrs. Eleanor Vance]
	// font size: 72
	// line height: 86
	// start y: 307
	// line 0 at y=350
}

func ExampleWrapLines() {
	lines, _ := layout.WrapLines("Happy Teachers Day to the best teacher", 48, 600)
	for _, ln := range lines {
		fmt.Printf("%q\n", ln)
	}
	// Output:
	// "Happy Teachers Day"
	// "to the best teacher"
}
