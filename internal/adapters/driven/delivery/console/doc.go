// Package console delivers digests as styled text to a terminal or any
// io.Writer. Colour is used only when the writer is a terminal.
package console
