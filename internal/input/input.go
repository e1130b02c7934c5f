// Package input maps GLFW keys and mouse buttons to viewer actions with per-frame edge
// detection.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer action, not a physical key.
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionSprint
	ActionBreak
	ActionPlace
	ActionPause
	ActionHotbar1
	ActionHotbar2
	ActionHotbar3
	ActionHotbar4
	ActionHotbar5
	ActionHotbar6
	ActionHotbar7
	ActionHotbar8
	ActionHotbar9
	ActionSave
	ActionDistanceUp
	ActionDistanceDown
	ActionCount // sentinel for array sizing
)

// HotbarAction returns the action selecting hotbar slot i.
func HotbarAction(i int) Action { return ActionHotbar1 + Action(i) }

// Manager tracks which actions are held and which changed since the last PostUpdate.
type Manager struct {
	mu sync.RWMutex

	keyToActions         map[glfw.Key][]Action
	mouseButtonToActions map[glfw.MouseButton][]Action

	current      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager returns a manager with the default bindings.
func NewManager() *Manager {
	m := &Manager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeySpace, ActionMoveUp)
	m.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	m.BindKey(glfw.KeyLeftControl, ActionSprint)
	m.BindKey(glfw.KeyEscape, ActionPause)
	m.BindKey(glfw.KeyF5, ActionSave)
	m.BindKey(glfw.KeyEqual, ActionDistanceUp)
	m.BindKey(glfw.KeyMinus, ActionDistanceDown)
	keys := [...]glfw.Key{glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4, glfw.Key5, glfw.Key6, glfw.Key7, glfw.Key8, glfw.Key9}
	for i, k := range keys {
		m.BindKey(k, HotbarAction(i))
	}

	m.BindMouseButton(glfw.MouseButtonLeft, ActionBreak)
	m.BindMouseButton(glfw.MouseButtonRight, ActionPlace)
	return m
}

// BindKey adds a binding. One key may drive several actions and several keys one action.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// BindMouseButton adds a mouse binding.
func (m *Manager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mouseButtonToActions[button] = append(m.mouseButtonToActions[button], action)
}

// HandleKeyEvent feeds a key callback into the manager. Repeat counts as held.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(m.keyToActions[key], action == glfw.Press || action == glfw.Repeat)
}

// HandleMouseButtonEvent feeds a mouse button callback into the manager.
func (m *Manager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(m.mouseButtonToActions[button], action == glfw.Press)
}

func (m *Manager) apply(actions []Action, pressed bool) {
	for _, a := range actions {
		if pressed && !m.current[a] {
			m.justPressed[a] = true
		}
		if !pressed && m.current[a] {
			m.justReleased[a] = true
		}
		m.current[a] = pressed
	}
}

// ReleaseAll drops every held action, e.g. when the window loses the cursor.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for a := range ActionCount {
		if m.current[a] {
			m.justReleased[a] = true
		}
		m.current[a] = false
	}
}

// PostUpdate clears the edge flags. Call it once at the end of every frame.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.justPressed = [ActionCount]bool{}
	m.justReleased = [ActionCount]bool{}
}

// IsActive reports whether action is held.
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current[action]
}

// JustPressed reports whether action went down during the current frame.
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// JustReleased reports whether action went up during the current frame.
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[action]
}

// Axis returns +1, -1 or 0 for a pair of opposing actions.
func (m *Manager) Axis(positive, negative Action) float32 {
	var v float32
	if m.IsActive(positive) {
		v++
	}
	if m.IsActive(negative) {
		v--
	}
	return v
}
