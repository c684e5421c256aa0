package ui

// startupSplashTime is the time in seconds the splash screen is shown
const startupSplashTime = 5 // seconds

// aboutSplashTime is the time in seconds the about screen is shown
const aboutSplashTime = 3 // seconds

// updateMenuItemPrefix is the copy for the new update available tray menu item
const updateMenuItemPrefix = "Update to "