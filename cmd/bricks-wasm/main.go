//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-bricks/audio"
	"github.com/cwbudde/algo-bricks/patch"
	"github.com/cwbudde/algo-bricks/synth"
)

const maxFrames = 128

var (
	engine       *synth.Engine
	sink         *audio.PullSink
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmTriggerNote", js.FuncOf(wasmTriggerNote))
	js.Global().Set("wasmReleaseNote", js.FuncOf(wasmReleaseNote))
	js.Global().Set("wasmSetParameter", js.FuncOf(wasmSetParameter))
	js.Global().Set("wasmGetParameter", js.FuncOf(wasmGetParameter))
	js.Global().Set("wasmSetReverbPreset", js.FuncOf(wasmSetReverbPreset))
	js.Global().Set("wasmReverbPresetNames", js.FuncOf(wasmReverbPresetNames))
	js.Global().Set("wasmScaleLabels", js.FuncOf(wasmScaleLabels))
	js.Global().Set("wasmReset", js.FuncOf(wasmReset))
	js.Global().Set("wasmStart", js.FuncOf(wasmStart))
	js.Global().Set("wasmStop", js.FuncOf(wasmStop))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM bricks module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	cfg := patch.Default().Config
	cfg.SampleRate = args[0].Int()
	sink = &audio.PullSink{}
	cfg.Sink = sink

	var err error
	engine, err = synth.NewEngine(cfg)
	if err != nil {
		println("Engine init failed:", err.Error())
		return nil
	}
	outputBuffer = make([]float32, maxFrames*2)

	println("Bricks initialized at", cfg.SampleRate, "Hz")
	return nil
}

func wasmStart(this js.Value, args []js.Value) interface{} {
	if engine == nil {
		return false
	}
	if err := engine.Start(); err != nil {
		println("Start failed:", err.Error())
		return false
	}
	return true
}

func wasmStop(this js.Value, args []js.Value) interface{} {
	if engine == nil {
		return nil
	}
	if err := engine.Stop(); err != nil {
		println("Stop failed:", err.Error())
	}
	return nil
}

func wasmTriggerNote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return false
	}
	return engine.TriggerNote(args[0].String()) == nil
}

func wasmReleaseNote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return false
	}
	return engine.ReleaseNote(args[0].String()) == nil
}

func wasmSetParameter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || engine == nil {
		return false
	}
	return engine.SetParameterByName(args[0].String(), args[1].Float()) == nil
}

func wasmGetParameter(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return js.Null()
	}
	v, err := engine.GetParameterByName(args[0].String())
	if err != nil {
		return js.Null()
	}
	return v
}

func wasmSetReverbPreset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return nil
	}
	if err := engine.SetReverbPreset(args[0].Int()); err != nil {
		println("Reverb preset failed:", err.Error())
	}
	return engine.ReverbPreset()
}

func wasmReverbPresetNames(this js.Value, args []js.Value) interface{} {
	names := synth.ReverbPresetNames()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func wasmReset(this js.Value, args []js.Value) interface{} {
	if engine != nil {
		engine.Reset()
	}
	return nil
}

func wasmScaleLabels(this js.Value, args []js.Value) interface{} {
	p := patch.Default()
	if len(args) > 0 {
		p.Root = args[0].Int()
	}
	scale, err := p.Scale()
	if err != nil {
		return js.Null()
	}
	out := make([]interface{}, len(scale))
	for i, pitch := range scale {
		out[i] = pitch.String()
	}
	return out
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || sink == nil {
		return 0
	}
	numFrames := min(args[0].Int(), maxFrames)
	if numFrames < 1 {
		return 0
	}
	sink.Pull(outputBuffer[:2*numFrames])

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
