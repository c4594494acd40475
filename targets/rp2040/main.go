//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"bat6/core"
	"bat6/standalone"
	"bat6/standalone/config"
)

var (
	// Debug counters
	loopPanics uint32
)

func main() {
	// Disable the watchdog left running by a previous image
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	cfg := config.Default()

	// Debug output goes to USB CDC so the UART stays protocol-only
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(cfg.Debug)
	core.InitAsyncDebug()

	UpdateSystemTime()

	manager, err := standalone.NewManagerWithConfig(cfg)
	if err != nil {
		halt()
	}

	hw, host, err := initHardware(cfg, manager)
	if err != nil {
		core.DebugPrintln("[BUCK] hardware init failed: " + err.Error())
		halt()
	}

	if err := manager.Initialize(hw); err != nil {
		core.DebugPrintln("[EVENT] initialize failed: " + err.Error())
		halt()
	}

	// The trampolines need the controller, which exists only after Initialize.
	ctrl := manager.Controller()
	uvlo := mustPin(cfg.Pins.UVLO)
	edge := machine.PinRising
	if cfg.Buck.UVLOActiveLow {
		edge = machine.PinFalling
	}
	uvlo.SetInterrupt(edge, func(machine.Pin) { ctrl.OnUVLO() })

	go host.Run(context.Background(), manager.Bus())

	if err := manager.Start(); err != nil {
		halt()
	}

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopPanics++
					core.DumpDiagRing()
				}
			}()
			manager.Step(GetHardwareTime())
		}()

		// Yield to the UART receiver and debug writer
		time.Sleep(50 * time.Microsecond)
	}
}

// initHardware builds the drivers. The sampler delivers through a
// trampoline so it can exist before the controller does.
func initHardware(cfg *config.Config, manager *standalone.Manager) (standalone.Hardware, *HostUART, error) {
	gpio := NewRPGPIODriver()

	dac, err := NewPIODAC(mustPin(cfg.Pins.DACClock), mustPin(cfg.Pins.DACData), cfg.Buck.CalibrationSpins)
	if err != nil {
		return standalone.Hardware{}, nil, err
	}

	sampler := NewRPSampler(mustPin(cfg.Pins.ADCVoltage), mustPin(cfg.Pins.ADCCurrent), cfg.Buck.SampleRateHz,
		func(ch core.ADCChannel, raw uint16) {
			if c := manager.Controller(); c != nil {
				c.OnSample(ch, raw)
			}
		})

	host, err := NewHostUART(cfg.UART, mustPin(cfg.Pins.UARTTx), mustPin(cfg.Pins.UARTRx))
	if err != nil {
		return standalone.Hardware{}, nil, err
	}

	position, pressed := newKnob(mustPin(cfg.Pins.KnobA), mustPin(cfg.Pins.KnobB), mustPin(cfg.Pins.Button))

	return standalone.Hardware{
		GPIO:     gpio,
		DAC:      dac,
		Sampler:  sampler,
		Port:     host,
		Button:   pressed,
		Position: position,
	}, host, nil
}

// mustPin converts a validated pin name
func mustPin(name string) machine.Pin {
	n, err := config.ParsePin(name)
	if err != nil {
		halt()
	}
	return machine.Pin(n)
}

// halt blinks the LED forever to signal a fatal init error
func halt() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
