//go:build windows

package main

import (
	"log"
	"syscall"
)

// enableDPIAwareness opts into per-monitor DPI awareness so captures cover
// the real pixel dimensions instead of a scaled virtual screen.
func enableDPIAwareness() {
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret != 0 {
			log.Printf("DPI: SetProcessDpiAwareness failed, error code %d", ret)
		}
		return
	}

	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
			log.Printf("DPI: SetProcessDPIAware failed")
		}
	}
}
