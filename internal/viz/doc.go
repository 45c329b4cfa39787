// Package viz renders a running simulation in the terminal.
//
//   - [Model]: interactive Bubble Tea view that advances a simulator every
//     frame and draws bodies, trails and a preview path
//   - [Canvas]: braille dot canvas, 2×4 dots per character cell
//   - [Camera]: world to dot projection with pan and zoom
//   - [FramePrinter]: non-interactive run observer that redraws in place
//
// # Key Bindings
//
//	Space - Pause/Resume
//	I     - Toggle Euler/Verlet
//	1/2   - Fewer/more sub-steps per frame
//	3/4   - Smaller/larger time step
//	Q/A   - Spawn radius
//	E/D   - Trail length
//	N     - Spawn a body at the view centre
//	G     - Add a 10×10 grid of bodies
//	R     - Reset to a single body
package viz
