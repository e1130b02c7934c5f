package main

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func setupInputHandlers(window *glfw.Window, v *Viewer) {
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !v.paused {
			v.camera.HandleMouseMovement(xpos, ypos)
		}
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if !v.paused {
			v.input.HandleMouseButtonEvent(button, action)
		}
	})

	// Escape must reach the manager while paused so it can resume.
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		v.input.HandleKeyEvent(key, action)
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		if v.paused || yoff == 0 {
			return
		}
		if yoff > 0 {
			v.selectSlot(v.slot - 1)
		} else {
			v.selectSlot(v.slot + 1)
		}
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		v.camera.SetViewport(fbWidth, fbHeight)
	})

	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused {
			v.input.ReleaseAll()
		}
	})
}
