//go:build js && wasm

package main

import (
	"image"
	"strconv"
	"syscall/js"

	sm "synthmidi/pkg/synthmidi"
)

var (
	lastFrame    sm.Frame
	lastVerdicts [sm.KeyCount]sm.Verdict
	lastClass    *sm.Classifier
)

func main() {
	js.Global().Set("classifyFrame", js.FuncOf(classifyFrame))
	js.Global().Set("renderOverlay", js.FuncOf(renderOverlay))
	select {} // block forever
}

// classifyFrame(rgbaBytes, width, height, options) classifies every key of one
// canvas frame. options may carry keyRow and cPositions ({"60": 567, ...}).
func classifyFrame(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("usage: classifyFrame(rgbaBytes, width, height, options)")
	}

	jsBytes := args[0]
	length := jsBytes.Get("length").Int()
	pix := make([]byte, length)
	js.CopyBytesToGo(pix, jsBytes)

	width := args[1].Int()
	height := args[2].Int()
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return errorResult("pixel buffer does not match width and height")
	}

	cal, err := calibrationFromJS(args)
	if err != nil {
		return errorResult("calibration error: " + err.Error())
	}

	img := &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	frame, err := sm.FrameFromImage(img)
	if err != nil {
		return errorResult("frame error: " + err.Error())
	}

	p := sm.NewExtractParams()
	p.SkipSeconds = 0
	ex, err := sm.NewExtractor(cal, p)
	if err != nil {
		return errorResult("calibration error: " + err.Error())
	}

	lastFrame.Close()
	lastFrame = frame
	lastClass = ex.Classifier()
	lastVerdicts = ex.ClassifyFrame(frame)

	kb := ex.Keyboard()
	jsKeys := make([]interface{}, 0, sm.KeyCount)
	left, right := 0, 0
	for i, key := range kb.Keys() {
		v := lastVerdicts[i]
		pt := lastClass.SamplePoint(key)
		if v.Lit && v.Hand == sm.HandLeft {
			left++
		} else if v.Lit {
			right++
		}
		jsKeys = append(jsKeys, map[string]interface{}{
			"pitch":  key.Pitch,
			"name":   sm.PitchName(key.Pitch),
			"x":      pt.X,
			"y":      pt.Y,
			"raised": key.Raised,
			"lit":    v.Lit,
			"hand":   v.Hand.String(),
		})
	}

	return js.ValueOf(map[string]interface{}{
		"width":       width,
		"height":      height,
		"octaveWidth": kb.OctaveWidth(),
		"whiteWidth":  kb.WhiteKeyWidth(),
		"left":        left,
		"right":       right,
		"keys":        jsKeys,
	})
}

func calibrationFromJS(args []js.Value) (sm.Calibration, error) {
	cal := sm.DefaultCalibration()
	if len(args) < 4 || args[3].Type() != js.TypeObject {
		return cal, nil
	}
	opts := args[3]
	if row := opts.Get("keyRow"); row.Type() == js.TypeNumber {
		cal.KeyRow = row.Int()
	}
	positions := opts.Get("cPositions")
	if positions.Type() != js.TypeObject {
		return cal, nil
	}
	keys := js.Global().Get("Object").Call("keys", positions)
	cal.CPositions = make(map[int]int, keys.Length())
	for i := 0; i < keys.Length(); i++ {
		name := keys.Index(i).String()
		pitch, err := strconv.Atoi(name)
		if err != nil {
			return sm.Calibration{}, err
		}
		cal.CPositions[pitch] = positions.Get(name).Int()
	}
	return cal, nil
}

func renderOverlay(this js.Value, args []js.Value) interface{} {
	if lastClass == nil || lastFrame.Empty() {
		return js.Null()
	}

	jpegBytes, err := sm.RenderOverlayBytes(lastFrame, lastClass, &lastVerdicts)
	if err != nil {
		return js.Null()
	}

	uint8Array := js.Global().Get("Uint8Array").New(len(jpegBytes))
	js.CopyBytesToJS(uint8Array, jpegBytes)
	return uint8Array
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
