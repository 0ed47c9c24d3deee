//go:build windows

package singleton

import "golang.org/x/sys/windows"

const mutexName = "ReemapUniqueGuardMutexName"

type windowsGuard struct {
	handle windows.Handle
}

// Acquire creates (or opens) the named mutex and reports ErrAlreadyRunning
// if another process already holds it.
func Acquire() (Guard, error) {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateMutex(nil, true, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, err
	}
	return &windowsGuard{handle: handle}, nil
}

func (g *windowsGuard) Close() error {
	return windows.CloseHandle(g.handle)
}
