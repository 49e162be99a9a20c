package boards

// Descriptor names the board and the GPIO wired to its addressable LED.
// The name doubles as the key of the board's embedded configuration.
type Descriptor struct {
	Name   string
	LEDPin int
}
