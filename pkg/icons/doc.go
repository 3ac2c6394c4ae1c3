// Package icons loads the sign and body icons drawn on the wheel.
//
// A [Registry] implements [canvas.Provider]. Icons are declared first and
// loaded afterwards, possibly while a wheel is being drawn; subscribers of a
// declared icon are notified once it is ready. Icon ids follow the wheel's
// naming: "ic_" followed by the sign or body name, e.g. "ic_Aries" or
// "ic_Ascendant".
//
// A directory of icons is registered with [Registry.DeclareDir], which accepts
// PNG, JPEG and WebP files named after their id:
//
//	reg := icons.NewRegistry()
//	if err := reg.DeclareDir("assets/icons"); err != nil { ... }
//	go reg.Preload(ctx)
package icons
