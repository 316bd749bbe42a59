package driver

import "fmt"

// Target identifies the architecture of the active device. Compiled
// artifacts are keyed by it.
type Target struct {
	Backend  string `json:"backend"`
	Arch     string `json:"arch"`
	WarpSize int    `json:"warpSize"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s:%d", t.Backend, t.Arch, t.WarpSize)
}

// Device is the handle of the active device, e.g. cuda:0.
type Device struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Type, d.Index)
}
