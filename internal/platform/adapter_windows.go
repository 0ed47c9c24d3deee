//go:build windows

package platform

import (
	"path/filepath"
	"runtime"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"reemap/internal/buttons"
	"reemap/internal/engine"
	"reemap/internal/foreground"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procGetKeyState         = user32.NewProc("GetKeyState")
	procSendInput           = user32.NewProc("SendInput")
	procSetWinEventHook     = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent      = user32.NewProc("UnhookWinEvent")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowThreadPID  = user32.NewProc("GetWindowThreadProcessId")

	procGetModuleHandle             = kernel32.NewProc("GetModuleHandleW")
	procGetCurrentThreadID          = kernel32.NewProc("GetCurrentThreadId")
	procOpenProcess                 = kernel32.NewProc("OpenProcess")
	procCloseHandle                 = kernel32.NewProc("CloseHandle")
	procQueryFullProcessImageNameW  = kernel32.NewProc("QueryFullProcessImageNameW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
	wmMouseHWheel = 0x020E

	llkhfInjected = 0x10
	llmhfInjected = 0x01

	vkScroll = 0x91

	eventSystemForeground  = 0x0003
	eventSystemMinimizeEnd = 0x0017
	winEventOutOfContext   = 0x0000

	processQueryLimitedInformation = 0x1000

	inputKeyboard = 1
	inputMouse    = 0

	keyeventfKeyUp = 0x0002

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfXDown      = 0x0080
	mouseeventfXUp        = 0x0100
	mouseeventfWheel      = 0x0800
	mouseeventfHWheel     = 0x1000

	wheelDelta = 120

	// inputSize/inputUnionOffset mirror the C INPUT struct on amd64: a
	// 4-byte type tag, 4 bytes of alignment padding, then a 32-byte union
	// of MOUSEINPUT/KEYBDINPUT/HARDWAREINPUT.
	inputSize        = 40
	inputUnionOffset = 8
)

type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllhookstruct struct {
	Pt          struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keyboardInputUnion struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type mouseInputUnion struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// Adapter wires the interception engine and the foreground tracker to
// Windows's low-level keyboard/mouse hooks and WinEvent notifications, and
// implements engine.Sink by batching synthesized input into a single
// SendInput call per hook callback.
type Adapter struct {
	eng      *engine.Engine
	tracker  *foreground.Tracker
	threadID uint32

	keyboardHook uintptr
	mouseHook    uintptr
	fgEventHook  uintptr
	minEventHook uintptr
}

func NewAdapter() *Adapter {
	return &Adapter{}
}

// activeAdapter is the single adapter whose hooks are currently installed.
// SetWindowsHookEx/SetWinEventHook callbacks are free functions (there is no
// way to pass a closure to syscall.NewCallback's stdcall trampoline), so the
// callbacks reach the active instance through this package-level pointer,
// matching the teacher's hotkey package's instanceManager pattern.
var activeAdapter atomic.Pointer[Adapter]

// Start launches a dedicated goroutine, locked to its OS thread, that
// installs the keyboard, mouse, and foreground WinEvent hooks and pumps
// messages for them until Stop is called. Start itself returns once the
// hooks are installed, or with the error if a hook could not be installed.
func (a *Adapter) Start(eng *engine.Engine, tracker *foreground.Tracker) error {
	a.eng = eng
	a.tracker = tracker
	activeAdapter.Store(a)

	ready := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		tid, _, _ := procGetCurrentThreadID.Call()
		a.threadID = uint32(tid)

		hMod, _, _ := procGetModuleHandle.Call(0)

		var err error
		a.keyboardHook, _, err = procSetWindowsHookEx.Call(whKeyboardLL, syscall.NewCallback(keyboardHookProc), hMod, 0)
		if a.keyboardHook == 0 {
			ready <- err
			return
		}
		a.mouseHook, _, err = procSetWindowsHookEx.Call(whMouseLL, syscall.NewCallback(mouseHookProc), hMod, 0)
		if a.mouseHook == 0 {
			ready <- err
			return
		}
		a.fgEventHook, _, _ = procSetWinEventHook.Call(eventSystemForeground, eventSystemForeground, 0, syscall.NewCallback(winEventProc), 0, 0, winEventOutOfContext)
		a.minEventHook, _, _ = procSetWinEventHook.Call(eventSystemMinimizeEnd, eventSystemMinimizeEnd, 0, syscall.NewCallback(winEventProc), 0, 0, winEventOutOfContext)

		ready <- nil

		var msg struct {
			Hwnd    uintptr
			Message uint32
			WParam  uintptr
			LParam  uintptr
			Time    uint32
			Pt      struct{ X, Y int32 }
		}
		for {
			r, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
		}

		procUnhookWindowsHookEx.Call(a.keyboardHook)
		procUnhookWindowsHookEx.Call(a.mouseHook)
		procUnhookWinEvent.Call(a.fgEventHook)
		procUnhookWinEvent.Call(a.minEventHook)
	}()

	return <-ready
}

// CurrentWindow queries the live foreground window's title and owning
// process name. Callers that need to re-run a foreground match outside of a
// WinEvent callback (e.g. after a ruleset swap, or on an explicit
// CheckForeground request) use this instead of duplicating the Win32 calls.
func (a *Adapter) CurrentWindow() (foreground.WindowInfo, error) {
	return currentWindowInfo(), nil
}

// Stop posts WM_QUIT to the hook thread, ending its message loop and
// unhooking everything that loop installed.
func (a *Adapter) Stop() error {
	if a.threadID == 0 {
		return nil
	}
	procPostThreadMessage.Call(uintptr(a.threadID), wmQuit, 0, 0)
	activeAdapter.CompareAndSwap(a, nil)
	return nil
}

// Send implements engine.Sink: batch is flattened into one SendInput call so
// the OS never observes the remap's intermediate half-pressed state.
func (a *Adapter) Send(batch []buttons.Input) {
	if len(batch) == 0 {
		return
	}
	buf := make([]byte, inputSize*len(batch))
	for i, in := range batch {
		encodeInput(buf[i*inputSize:(i+1)*inputSize], in)
	}
	procSendInput.Call(uintptr(len(batch)), uintptr(unsafe.Pointer(&buf[0])), uintptr(inputSize))
}

func encodeInput(dst []byte, in buttons.Input) {
	switch in.Kind {
	case buttons.InputKey:
		*(*uint32)(unsafe.Pointer(&dst[0])) = inputKeyboard
		ki := (*keyboardInputUnion)(unsafe.Pointer(&dst[inputUnionOffset]))
		ki.WVk = uint16(in.Key.Button)
		if in.Key.Direction == buttons.Up {
			ki.DwFlags = keyeventfKeyUp
		}
	case buttons.InputMouse:
		*(*uint32)(unsafe.Pointer(&dst[0])) = inputMouse
		mi := (*mouseInputUnion)(unsafe.Pointer(&dst[inputUnionOffset]))
		down := in.Mouse.Direction == buttons.Down
		switch in.Mouse.Button {
		case buttons.MouseLeft:
			mi.DwFlags = pick(down, mouseeventfLeftDown, mouseeventfLeftUp)
		case buttons.MouseRight:
			mi.DwFlags = pick(down, mouseeventfRightDown, mouseeventfRightUp)
		case buttons.MouseMiddle:
			mi.DwFlags = pick(down, mouseeventfMiddleDown, mouseeventfMiddleUp)
		case buttons.MouseX1:
			mi.DwFlags = pick(down, mouseeventfXDown, mouseeventfXUp)
			mi.MouseData = 1
		case buttons.MouseX2:
			mi.DwFlags = pick(down, mouseeventfXDown, mouseeventfXUp)
			mi.MouseData = 2
		}
	case buttons.InputWheel:
		*(*uint32)(unsafe.Pointer(&dst[0])) = inputMouse
		mi := (*mouseInputUnion)(unsafe.Pointer(&dst[inputUnionOffset]))
		switch in.Wheel.Button {
		case buttons.WheelUp:
			mi.DwFlags, mi.MouseData = mouseeventfWheel, uint32(wheelDelta)
		case buttons.WheelDown:
			mi.DwFlags, mi.MouseData = mouseeventfWheel, uint32(int32(-wheelDelta))
		case buttons.WheelHorzRight:
			mi.DwFlags, mi.MouseData = mouseeventfHWheel, uint32(wheelDelta)
		case buttons.WheelHorzLeft:
			mi.DwFlags, mi.MouseData = mouseeventfHWheel, uint32(int32(-wheelDelta))
		}
	}
}

func pick(cond bool, whenTrue, whenFalse uint32) uint32 {
	if cond {
		return whenTrue
	}
	return whenFalse
}

func scrollLockActive() bool {
	state, _, _ := procGetKeyState.Call(vkScroll)
	return state&1 != 0
}

func keyboardHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	a := activeAdapter.Load()
	if nCode == 0 && a != nil {
		kbd := (*kbdllhookstruct)(unsafe.Pointer(lParam))
		if kbd.Flags&llkhfInjected == 0 && !scrollLockActive() && buttons.IsRecognizedKey(uint8(kbd.VkCode)) {
			hb := buttons.HoldKey(buttons.KeyButton(kbd.VkCode))
			down := wParam == wmKeyDown || wParam == wmSysKeyDown
			var swallow bool
			if down {
				swallow = a.eng.OnHoldDown(hb)
			} else {
				swallow = a.eng.OnHoldUp(hb)
			}
			if swallow {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	a := activeAdapter.Load()
	if nCode == 0 && a != nil {
		ms := (*msllhookstruct)(unsafe.Pointer(lParam))
		if ms.Flags&llmhfInjected == 0 && !scrollLockActive() {
			if swallow, handled := dispatchMouseEvent(a, wParam, ms); handled && swallow {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// dispatchMouseEvent decodes a single WM_* mouse message into a HoldButton
// or TapButton event and runs it through the engine. handled is false for
// messages the interception engine has no opinion on (e.g. WM_MOUSEMOVE).
func dispatchMouseEvent(a *Adapter, wParam uintptr, ms *msllhookstruct) (swallow, handled bool) {
	switch wParam {
	case wmLButtonDown:
		return a.eng.OnHoldDown(buttons.HoldMouse(buttons.MouseLeft)), true
	case wmLButtonUp:
		return a.eng.OnHoldUp(buttons.HoldMouse(buttons.MouseLeft)), true
	case wmRButtonDown:
		return a.eng.OnHoldDown(buttons.HoldMouse(buttons.MouseRight)), true
	case wmRButtonUp:
		return a.eng.OnHoldUp(buttons.HoldMouse(buttons.MouseRight)), true
	case wmMButtonDown:
		return a.eng.OnHoldDown(buttons.HoldMouse(buttons.MouseMiddle)), true
	case wmMButtonUp:
		return a.eng.OnHoldUp(buttons.HoldMouse(buttons.MouseMiddle)), true
	case wmXButtonDown:
		return a.eng.OnHoldDown(buttons.HoldMouse(decodeXButton(ms.MouseData))), true
	case wmXButtonUp:
		return a.eng.OnHoldUp(buttons.HoldMouse(decodeXButton(ms.MouseData))), true
	case wmMouseWheel:
		if decodeWheelDelta(ms.MouseData) > 0 {
			return a.eng.OnTap(buttons.Tap(buttons.WheelUp)), true
		}
		return a.eng.OnTap(buttons.Tap(buttons.WheelDown)), true
	case wmMouseHWheel:
		if decodeWheelDelta(ms.MouseData) > 0 {
			return a.eng.OnTap(buttons.Tap(buttons.WheelHorzRight)), true
		}
		return a.eng.OnTap(buttons.Tap(buttons.WheelHorzLeft)), true
	default:
		return false, false
	}
}

// decodeXButton and decodeWheelDelta read the signed high word of
// MouseData. The teacher's own hotkey package reads this word as unsigned
// ((ms.MouseData >> 16) == 1), which happens to work for XBUTTON1/XBUTTON2
// (1 and 2) but silently misreads any field that can carry a negative
// value, such as the wheel delta. Reemap's events include scroll direction,
// so the high word must be extracted as int16, not compared as a raw
// unsigned shift.
func decodeXButton(mouseData uint32) buttons.MouseButton {
	if int16(mouseData>>16) == 1 {
		return buttons.MouseX1
	}
	return buttons.MouseX2
}

func decodeWheelDelta(mouseData uint32) int16 {
	return int16(mouseData >> 16)
}

func winEventProc(hWinEventHook uintptr, event uint32, hwnd uintptr, idObject, idChild int32, idEventThread, dwmsEventTime uint32) uintptr {
	a := activeAdapter.Load()
	if a == nil || a.tracker == nil {
		return 0
	}
	switch event {
	case eventSystemForeground, eventSystemMinimizeEnd:
		win, _ := a.CurrentWindow()
		a.tracker.Check(win)
	}
	return 0
}

func currentWindowInfo() foreground.WindowInfo {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return foreground.WindowInfo{}
	}
	var titleBuf [512]uint16
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&titleBuf[0])), uintptr(len(titleBuf)))
	title := syscall.UTF16ToString(titleBuf[:n])

	var pid uint32
	procGetWindowThreadPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

	return foreground.WindowInfo{Title: title, Process: processNameForPID(pid)}
}

func processNameForPID(pid uint32) string {
	h, _, _ := procOpenProcess.Call(processQueryLimitedInformation, 0, uintptr(pid))
	if h == 0 {
		return ""
	}
	defer procCloseHandle.Call(h)

	var buf [512]uint16
	size := uint32(len(buf))
	ok, _, _ := procQueryFullProcessImageNameW.Call(h, 0, uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ok == 0 {
		return ""
	}
	return filepath.Base(syscall.UTF16ToString(buf[:size]))
}
