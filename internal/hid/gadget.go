package hid

import (
	"fmt"
	"log"
	"os"
)

// GadgetOutput emits reports through Linux USB HID gadget device nodes.
// The keyboard function is required; the consumer-control function is
// optional and usages error out when it is absent.
type GadgetOutput struct {
	kbd *os.File
	con *os.File
}

// NewGadgetOutput opens the gadget device nodes. consumerPath may be
// empty when the gadget exposes no consumer-control function.
func NewGadgetOutput(kbdPath, consumerPath string) (*GadgetOutput, error) {
	kbd, err := os.OpenFile(kbdPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open keyboard gadget: %w", err)
	}
	g := &GadgetOutput{kbd: kbd}
	if consumerPath != "" {
		con, err := os.OpenFile(consumerPath, os.O_WRONLY, 0)
		if err != nil {
			kbd.Close()
			return nil, fmt.Errorf("open consumer gadget: %w", err)
		}
		g.con = con
	}
	return g, nil
}

// EmitKeyReport writes the 8-byte boot keyboard report.
func (g *GadgetOutput) EmitKeyReport(r Report) error {
	if _, err := g.kbd.Write(r.Bytes()); err != nil {
		return fmt.Errorf("write key report: %w", err)
	}
	return nil
}

// EmitConsumerReport writes the 2-byte consumer report.
func (g *GadgetOutput) EmitConsumerReport(c ConsumerReport) error {
	if g.con == nil {
		return fmt.Errorf("no consumer gadget configured")
	}
	if _, err := g.con.Write(c.Bytes()); err != nil {
		return fmt.Errorf("write consumer report: %w", err)
	}
	return nil
}

// Close releases the device nodes.
func (g *GadgetOutput) Close() error {
	var errs []error
	if err := g.kbd.Close(); err != nil {
		errs = append(errs, err)
	}
	if g.con != nil {
		if err := g.con.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// LogOutput logs reports instead of delivering them. It stands in for
// the gadget on machines without one.
type LogOutput struct{}

// EmitKeyReport logs the report.
func (LogOutput) EmitKeyReport(r Report) error {
	log.Printf("hid: key report mods=%02x keys=%v", r.Modifiers, r.Keys)
	return nil
}

// EmitConsumerReport logs the usage.
func (LogOutput) EmitConsumerReport(c ConsumerReport) error {
	log.Printf("hid: consumer usage=0x%04x", c.Usage)
	return nil
}
