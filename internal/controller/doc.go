// Package controller drives the radio. It turns inbound lighting requests
// into ordered frame streams, applies the adaptive resend policy, folds every
// request into the state store and listens for frames from physical remotes.
//
// One goroutine owns everything: Run is the only caller of the radio and the
// store once started. Other goroutines talk to it through Submit and Reports.
//
// Request ordering:
//
//	power on            always first
//	command / commands
//	effect
//	hue, saturation
//	color               near-white selects the white LEDs
//	level, brightness
//	temperature, color_temp
//	mode
//	button_id + argument
//	power off           always last
package controller
