//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/filter-playground/dsp/polezero"
	"github.com/cwbudde/filter-playground/internal/audio"
	"github.com/cwbudde/filter-playground/internal/editor"
)

// playground is the one session exposed to the page. It exists between
// init and teardown.
type playground struct {
	session *editor.Session
	engine  *audio.Engine
}

var (
	pg    *playground
	funcs []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr, size := 48000.0, 400.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if len(args) > 1 {
			size = args[1].Float()
		}
		p, err := newPlayground(sr, size)
		if err != nil {
			return err.Error()
		}
		pg = p
		return js.Null()
	}))

	api.Set("teardown", export(func([]js.Value) any {
		pg = nil
		return js.Null()
	}))

	api.Set("addPole", export(addFunc(polezero.Pole, false)))
	api.Set("addZero", export(addFunc(polezero.Zero, false)))
	api.Set("addRealPole", export(addFunc(polezero.Pole, true)))
	api.Set("addRealZero", export(addFunc(polezero.Zero, true)))

	api.Set("pointerDown", export(func(args []js.Value) any {
		if pg == nil || len(args) < 2 {
			return js.Null()
		}
		ref, ok := pg.session.PointerDown(args[0].Float(), args[1].Float())
		if !ok {
			return js.Null()
		}
		return refValue(ref)
	}))

	api.Set("pointerMove", export(func(args []js.Value) any {
		if pg == nil || len(args) < 2 {
			return js.Null()
		}
		if err := pg.session.PointerMove(args[0].Float(), args[1].Float()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("pointerUp", export(func([]js.Value) any {
		if pg != nil {
			pg.session.PointerUp()
		}
		return js.Null()
	}))

	api.Set("remove", export(func(args []js.Value) any {
		if pg == nil || len(args) < 2 {
			return js.Null()
		}
		kind, err := polezero.ParseKind(args[0].String())
		if err != nil {
			return err.Error()
		}
		if err := pg.session.Remove(polezero.Ref{Kind: kind, Index: args[1].Int()}); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("loadDemo", export(func([]js.Value) any {
		if pg == nil {
			return js.Null()
		}
		if err := pg.session.LoadDemo(); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("clear", export(func([]js.Value) any {
		if pg != nil {
			pg.session.Clear()
		}
		return js.Null()
	}))

	// tick is called once per animation frame. It syncs coefficients into
	// the audio engine and returns what to draw.
	api.Set("tick", export(func([]js.Value) any {
		if pg == nil {
			return js.Null()
		}
		return frameValue(pg.session.Tick())
	}))

	api.Set("render", export(func(args []js.Value) any {
		if pg == nil || len(args) < 1 {
			return js.Global().Get("Array").New()
		}
		left, right := pg.engine.RenderBlock(args[0].Int())
		out := js.Global().Get("Array").New(2)
		out.SetIndex(0, float32Array(left))
		out.SetIndex(1, float32Array(right))
		return out
	}))

	api.Set("responseCurve", export(func(args []js.Value) any {
		if pg == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[0]
		freqs := make([]float64, input.Length())
		for i := range freqs {
			freqs[i] = input.Index(i).Float()
		}
		resp := pg.engine.ResponseCurveDB(freqs)
		arr := js.Global().Get("Float32Array").New(len(resp))
		for i := range resp {
			arr.SetIndex(i, resp[i])
		}
		return arr
	}))

	js.Global().Set("FilterPlayground", api)
	select {}
}

func newPlayground(sampleRate, canvasSize float64) (*playground, error) {
	engine, err := audio.NewEngine(sampleRate)
	if err != nil {
		return nil, err
	}
	vp, err := polezero.NewViewport(canvasSize, canvasSize, polezero.DefaultPlotRange)
	if err != nil {
		return nil, err
	}
	session := editor.NewSession(vp,
		editor.WithPolicy(polezero.PolicyConjugate),
		editor.WithSink(engine),
	)
	return &playground{session: session, engine: engine}, nil
}

func addFunc(kind polezero.Kind, realAxis bool) func([]js.Value) any {
	return func([]js.Value) any {
		if pg == nil {
			return js.Null()
		}
		var (
			ref polezero.Ref
			err error
		)
		if realAxis {
			ref, err = pg.session.AddReal(kind)
		} else {
			ref, err = pg.session.Add(kind)
		}
		if err != nil {
			return err.Error()
		}
		return refValue(ref)
	}
}

func refValue(r polezero.Ref) js.Value {
	v := js.Global().Get("Object").New()
	v.Set("kind", r.Kind.String())
	v.Set("index", r.Index)
	return v
}

// frameValue converts a frame to {poles, zeros, engaged, ff, fb, error},
// with point positions in canvas pixels.
func frameValue(f editor.Frame) js.Value {
	v := js.Global().Get("Object").New()
	v.Set("poles", pointsValue(f.Viewport, f.Poles))
	v.Set("zeros", pointsValue(f.Viewport, f.Zeros))
	if f.Engaging {
		v.Set("engaged", refValue(f.Engaged))
	} else {
		v.Set("engaged", js.Null())
	}
	v.Set("ff", float64Array(f.Coefficients.Feedforward))
	v.Set("fb", float64Array(f.Coefficients.Feedback))
	v.Set("unitRadius", f.Viewport.UnitCircleRadius())
	if f.Err != nil {
		v.Set("error", f.Err.Error())
	} else {
		v.Set("error", js.Null())
	}
	return v
}

func pointsValue(vp polezero.Viewport, pts []polezero.Point) js.Value {
	arr := js.Global().Get("Array").New(len(pts))
	for i, p := range pts {
		x, y := vp.ToScreen(p)
		item := js.Global().Get("Object").New()
		item.Set("x", x)
		item.Set("y", y)
		item.Set("re", p.Re)
		item.Set("im", p.Im)
		arr.SetIndex(i, item)
	}
	return arr
}

func float32Array(buf []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(buf))
	for i, v := range buf {
		arr.SetIndex(i, v)
	}
	return arr
}

func float64Array(buf []float64) js.Value {
	arr := js.Global().Get("Float64Array").New(len(buf))
	for i, v := range buf {
		arr.SetIndex(i, v)
	}
	return arr
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
