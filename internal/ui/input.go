package ui

import (
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/emu"
	"github.com/hajimehoshi/ebiten/v2"
)

const stickThreshold = 0.5

// keyboardButtons maps the keyboard to player 1.
func keyboardButtons() emu.Buttons {
	return emu.Buttons{
		A:      ebiten.IsKeyPressed(ebiten.KeyX),
		B:      ebiten.IsKeyPressed(ebiten.KeyZ),
		Select: ebiten.IsKeyPressed(ebiten.KeyShift),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		Up:     ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
	}
}

// gamepadButtons reads a standard-layout pad: east face button is A, south is
// B, d-pad or left stick steer.
func gamepadButtons(id ebiten.GamepadID) emu.Buttons {
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return emu.Buttons{}
	}
	pressed := func(b ebiten.StandardGamepadButton) bool {
		return ebiten.IsStandardGamepadButtonPressed(id, b)
	}
	x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	return emu.Buttons{
		A:      pressed(ebiten.StandardGamepadButtonRightRight),
		B:      pressed(ebiten.StandardGamepadButtonRightBottom),
		Select: pressed(ebiten.StandardGamepadButtonCenterLeft),
		Start:  pressed(ebiten.StandardGamepadButtonCenterRight),
		Up:     pressed(ebiten.StandardGamepadButtonLeftTop) || y < -stickThreshold,
		Down:   pressed(ebiten.StandardGamepadButtonLeftBottom) || y > stickThreshold,
		Left:   pressed(ebiten.StandardGamepadButtonLeftLeft) || x < -stickThreshold,
		Right:  pressed(ebiten.StandardGamepadButtonLeftRight) || x > stickThreshold,
	}
}

// pollInput feeds the keyboard to player 1 and the first gamepad to player 2.
func (a *App) pollInput() {
	a.gamepads = ebiten.AppendGamepadIDs(a.gamepads[:0])
	var p2 emu.Buttons
	if len(a.gamepads) > 0 {
		p2 = gamepadButtons(a.gamepads[0])
	}
	_ = a.host.SetInput(0, keyboardButtons().Mask())
	_ = a.host.SetInput(1, p2.Mask())
}
