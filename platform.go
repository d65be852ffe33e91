package main

// Platform abstracts the OS-specific surface of the tray: its icon, its
// window and the main UI loop.
type Platform interface {
	Init()
	// Run blocks on the UI loop until Quit.
	Run()
	Quit()
	SetupTray(rgba []byte, w, h int)
	// SetTrayIcon replaces the tray icon with the image at ref.
	SetTrayIcon(ref string)
	SetTitle(title string)
	// ShowTray shows the tray window at the given screen position.
	ShowTray(x, y int)
	// SetTrayClickHandler registers fn for right-clicks on the tray icon.
	SetTrayClickHandler(fn func(x, y int))
	ShowHTML(html string)
	DispatchToMain(fn func())
	OpenURL(url string)
}
