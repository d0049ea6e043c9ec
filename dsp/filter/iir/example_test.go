package iir_test

import (
	"fmt"

	"github.com/cwbudde/filter-playground/dsp/filter/iir"
)

func ExampleFilter_ImpulseResponse() {
	f, err := iir.New([]float64{1}, []float64{1, -0.5})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(f.ImpulseResponse(4))
	// Output: [1 0.5 0.25 0.125]
}
