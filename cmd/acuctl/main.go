// Command acuctl is an interactive-less, one-shot CLI for talking to an
// Alpinestars airbag control unit over USB-serial: reading general/logging/
// measure/sensor/airbag state, and driving a firmware upgrade through the
// bootloader.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alpinestars-acu/acuctl/pkg/acu/command"
	"github.com/alpinestars-acu/acuctl/pkg/bootloader"
	"github.com/alpinestars-acu/acuctl/pkg/diagnostics"
	"github.com/alpinestars-acu/acuctl/pkg/firmware"
	"github.com/alpinestars-acu/acuctl/pkg/transport"
)

var (
	devicePath = flag.String("device", "", "serial device path (autodiscovered if empty)")
	redisAddr  = flag.String("redis-addr", "", "redis server address; diagnostics mirroring is disabled if empty")
	redisPass  = flag.String("redis-pass", "", "redis password")
	redisDB    = flag.Int("redis-db", 0, "redis database number")
	fwPath     = flag.String("firmware", "", "path to an encrypted firmware package for the firmware subcommand")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalf("usage: acuctl [flags] <subcommand> [args]")
	}

	// replay-frames drains the raw-frame log a prior mirrored session
	// wrote to Redis; it never touches the serial device.
	if args[0] == "replay-frames" {
		runReplayFrames(args[1:])
		return
	}

	path := *devicePath
	if path == "" {
		found, err := transport.Discover()
		if err != nil {
			log.Fatalf("discovering device: %v", err)
		}
		path = found
	}

	session, err := transport.Open(path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	defer session.Close()

	var mirror *diagnostics.Mirror
	if *redisAddr != "" {
		client, err := diagnostics.NewClient(*redisAddr, *redisPass, *redisDB)
		if err != nil {
			log.Fatalf("connecting to redis: %v", err)
		}
		defer client.Close()
		mirror = diagnostics.NewMirror(client)
	}

	roundTrip := func(cmd command.Command) (command.Command, error) {
		if err := session.Write(cmd); err != nil {
			return nil, err
		}
		if mirror != nil {
			mirror.LogFrame(session.LastWriteFrame())
		}
		resp, err := session.Read()
		if err != nil {
			return nil, err
		}
		if mirror != nil {
			mirror.LogFrame(session.LastReadFrame())
			mirror.Observe(resp)
		}
		return resp, nil
	}

	switch args[0] {
	case "sw-version":
		resp, err := roundTrip(command.GetSoftwareVersion{})
		fatalIf(err)
		fmt.Printf("%.1f\n", resp.(command.GetSoftwareVersion).Version)

	case "serial":
		resp, err := roundTrip(command.GetSerialNr{})
		fatalIf(err)
		fmt.Println(resp.(command.GetSerialNr).SerialNr)

	case "customer-info":
		resp, err := roundTrip(command.GetCustomerInfo{})
		fatalIf(err)
		fmt.Println(resp.(command.GetCustomerInfo).Info)

	case "service-date":
		resp, err := roundTrip(command.GetServiceDate{})
		fatalIf(err)
		fmt.Println(resp.(command.GetServiceDate).Date)

	case "operating-modus":
		resp, err := roundTrip(command.GetOperatingModus{})
		fatalIf(err)
		fmt.Printf("%+v\n", resp.(command.GetOperatingModus).Modus)

	case "inflation-type":
		resp, err := roundTrip(command.GetInflationType{})
		fatalIf(err)
		fmt.Println(resp.(command.GetInflationType).Type)

	case "bootloader-version":
		bl, err := bootloader.Enter(session)
		fatalIf(err)
		defer bl.Close()
		ver, err := bl.Version()
		fatalIf(err)
		fmt.Printf("bootloader version = %d\n", ver)

	case "bootloader-state":
		bl, err := bootloader.Enter(session)
		fatalIf(err)
		defer bl.Close()
		state, err := bl.State()
		fatalIf(err)
		fmt.Printf("bootloader state = %d\n", state)

	case "logs":
		runLogs(roundTrip, args[1:])

	case "supply":
		runSupply(roundTrip, args[1:])

	case "sensor":
		runSensor(roundTrip, args[1:])

	case "firmware":
		runFirmware(session, args[1:])

	default:
		log.Fatalf("unknown subcommand %q", args[0])
	}
}

func runLogs(roundTrip func(command.Command) (command.Command, error), args []string) {
	if len(args) == 0 {
		log.Fatalf("usage: acuctl logs <no-of-precrash|no-of-postcrash|no-of-errors|bat-count|error-history|op-hours|clear-op-hours|clear-error-history|clear-precrash|clear-postcrash>")
	}
	switch args[0] {
	case "no-of-precrash":
		resp, err := roundTrip(command.GetNumOfPreCrashLogs{})
		fatalIf(err)
		fmt.Println(resp.(command.GetNumOfPreCrashLogs).Count)
	case "no-of-postcrash":
		resp, err := roundTrip(command.GetNumOfPostCrashLogs{})
		fatalIf(err)
		fmt.Println(resp.(command.GetNumOfPostCrashLogs).Count)
	case "no-of-errors":
		resp, err := roundTrip(command.GetNumOfErrors{})
		fatalIf(err)
		fmt.Println(resp.(command.GetNumOfErrors).Count)
	case "bat-count":
		resp, err := roundTrip(command.GetBatCount{})
		fatalIf(err)
		fmt.Println(resp.(command.GetBatCount).Count)
	case "error-history":
		resp, err := roundTrip(command.GetErrorHistory{})
		fatalIf(err)
		fmt.Printf("% x\n", resp.(command.GetErrorHistory).Data)
	case "op-hours":
		resp, err := roundTrip(command.GetOPHours{})
		fatalIf(err)
		fmt.Println(resp.(command.GetOPHours).Duration)
	case "clear-op-hours":
		_, err := roundTrip(command.ClearOPHours{})
		fatalIf(err)
		fmt.Println("op-hours cleared")
	case "clear-error-history":
		_, err := roundTrip(command.ClearErrorHistory{})
		fatalIf(err)
		fmt.Println("error history cleared")
	case "clear-precrash":
		_, err := roundTrip(command.ClearPreCrashLog{})
		fatalIf(err)
		fmt.Println("pre-crash log cleared")
	case "clear-postcrash":
		_, err := roundTrip(command.ClearPostCrashLog{})
		fatalIf(err)
		fmt.Println("post-crash log cleared")
	default:
		log.Fatalf("unknown logs subcommand %q", args[0])
	}
}

func runSupply(roundTrip func(command.Command) (command.Command, error), args []string) {
	if len(args) == 0 {
		log.Fatalf("usage: acuctl supply <logic|peripheral|right-hand|left-hand|right-foot|left-foot|squib|battery|charging-state|zip-state>")
	}
	switch args[0] {
	case "logic":
		resp, err := roundTrip(command.GetLogicVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetLogicVoltage).Volts)
	case "peripheral":
		resp, err := roundTrip(command.GetPeripheralVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetPeripheralVoltage).Volts)
	case "right-hand":
		resp, err := roundTrip(command.GetRightHandVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetRightHandVoltage).Volts)
	case "left-hand":
		resp, err := roundTrip(command.GetLeftHandVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetLeftHandVoltage).Volts)
	case "right-foot":
		resp, err := roundTrip(command.GetRightFootVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetRightFootVoltage).Volts)
	case "left-foot":
		resp, err := roundTrip(command.GetLeftFootVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetLeftFootVoltage).Volts)
	case "squib":
		resp, err := roundTrip(command.GetSquibVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetSquibVoltage).Volts)
	case "battery":
		resp, err := roundTrip(command.GetBatteryVoltage{})
		fatalIf(err)
		fmt.Printf("%02.2f V\n", resp.(command.GetBatteryVoltage).Volts)
	case "charging-state":
		resp, err := roundTrip(command.GetChargingState{})
		fatalIf(err)
		fmt.Println(resp.(command.GetChargingState).State)
	case "zip-state":
		resp, err := roundTrip(command.GetZIPSwitchState{})
		fatalIf(err)
		if resp.(command.GetZIPSwitchState).Engaged {
			fmt.Println("ZIP Closed")
		} else {
			fmt.Println("ZIP Open")
		}
	default:
		log.Fatalf("unknown supply subcommand %q", args[0])
	}
}

func runSensor(roundTrip func(command.Command) (command.Command, error), args []string) {
	if len(args) == 0 {
		log.Fatalf("usage: acuctl sensor <revision|accelerometer|gyroscope> <right-hand|left-hand|right-foot|left-foot|body>")
	}
	switch args[0] {
	case "revision":
		if len(args) < 2 {
			log.Fatalf("usage: acuctl sensor revision <right-hand|left-hand|right-foot|left-foot>")
		}
		var rev command.RevisionPair
		switch args[1] {
		case "right-hand":
			resp, err := roundTrip(command.GetSWVRH{})
			fatalIf(err)
			rev = resp.(command.GetSWVRH).Revision
		case "left-hand":
			resp, err := roundTrip(command.GetSWVLH{})
			fatalIf(err)
			rev = resp.(command.GetSWVLH).Revision
		case "right-foot":
			resp, err := roundTrip(command.GetSWVRF{})
			fatalIf(err)
			rev = resp.(command.GetSWVRF).Revision
		case "left-foot":
			resp, err := roundTrip(command.GetSWVLF{})
			fatalIf(err)
			rev = resp.(command.GetSWVLF).Revision
		default:
			log.Fatalf("unknown sensor revision axis %q", args[1])
		}
		fmt.Printf("rev %.0f, %.0f\n", rev.Software, rev.Hardware)
	case "accelerometer":
		if len(args) < 2 {
			log.Fatalf("usage: acuctl sensor accelerometer <right-hand|left-hand|right-foot|left-foot|body>")
		}
		var accel command.Triaxial
		switch args[1] {
		case "right-hand":
			resp, err := roundTrip(command.GetRightHandAccel{})
			fatalIf(err)
			accel = resp.(command.GetRightHandAccel).Accel
		case "left-hand":
			resp, err := roundTrip(command.GetLeftHandAccel{})
			fatalIf(err)
			accel = resp.(command.GetLeftHandAccel).Accel
		case "right-foot":
			resp, err := roundTrip(command.GetRightFootAccel{})
			fatalIf(err)
			accel = resp.(command.GetRightFootAccel).Accel
		case "left-foot":
			resp, err := roundTrip(command.GetLeftFootAccel{})
			fatalIf(err)
			accel = resp.(command.GetLeftFootAccel).Accel
		case "body":
			resp, err := roundTrip(command.GetBodyAccel{})
			fatalIf(err)
			accel = resp.(command.GetBodyAccel).Accel
		default:
			log.Fatalf("unknown sensor accelerometer location %q", args[1])
		}
		fmt.Printf("x=%.3f y=%.3f z=%.3f\n", accel.X, accel.Y, accel.Z)
	case "gyroscope":
		resp, err := roundTrip(command.GetGyroscope{})
		fatalIf(err)
		gyro := resp.(command.GetGyroscope).Gyro
		fmt.Printf("x=%.3f y=%.3f z=%.3f\n", gyro.X, gyro.Y, gyro.Z)
	default:
		log.Fatalf("unknown sensor subcommand %q", args[0])
	}
}

// runFirmware drives a complete upgrade: decrypt, parse, flash, verify, and
// then the device-side re-init sequence the reference CLI performs after a
// successful flash (clear post-crash logs, reinstall default algorithm
// thresholds, re-init the algorithm).
func runFirmware(session *transport.Session, args []string) {
	if len(args) == 0 || args[0] != "upgrade" {
		log.Fatalf("usage: acuctl firmware upgrade")
	}
	if *fwPath == "" {
		log.Fatalf("firmware upgrade requires -firmware <path>")
	}

	ciphertext, err := os.ReadFile(*fwPath)
	fatalIf(err)

	plaintext, err := firmware.Decrypt(ciphertext)
	fatalIf(err)
	// Mirrors the reference packager, which always dumps the decrypted
	// blob to fw_de.bin for inspection.
	if err := os.WriteFile("fw_de.bin", plaintext, 0o644); err != nil {
		log.Printf("writing fw_de.bin: %v", err)
	}

	pkg, err := firmware.ParsePackage(plaintext)
	fatalIf(err)
	log.Printf("firmware package: image=%q version=%.1f flags=%s", pkg.Header.Image, pkg.Header.Version, pkg.Header.Flags)
	if err := os.WriteFile("fw.hex", pkg.HexData, 0o644); err != nil {
		log.Printf("writing fw.hex: %v", err)
	}

	bl, err := bootloader.Enter(session)
	fatalIf(err)
	defer bl.Close()

	blVersion, err := bl.Version()
	fatalIf(err)
	start, end := firmware.ROMWindow(blVersion)

	rom := firmware.NewRomImage(start, end)
	badSegments, err := firmware.ParseIntelHex(pkg.HexData, rom, start, end)
	fatalIf(err)
	if badSegments > 0 {
		log.Printf("%v: %d record(s) skipped", firmware.ErrHexAddressOutOfRange, badSegments)
	}

	if err := bl.Transfer(rom); err != nil {
		log.Fatalf("upgrade failed: %v", err)
	}
	if err := bl.Finalise(rom.CRC16()); err != nil {
		log.Fatalf("upgrade failed: %v", err)
	}

	log.Printf("clearing post-crash logs..")
	if err := session.Write(command.ClearPostCrashLog{}); err == nil {
		session.Read()
	}
	log.Printf("setting algorithm default thresholds..")
	if err := session.Write(command.SetAlgorithmDefaultThresholds{}); err == nil {
		session.Read()
	}
	log.Printf("init algorithms..")
	if err := session.Write(command.InitAlgorithm{}); err == nil {
		session.Read()
	}
	log.Printf("FW upgrade complete!")
}

// runReplayFrames drains the raw-frame log another acuctl session mirrored
// into Redis (see diagnostics.Mirror.LogFrame), printing each hex-encoded
// frame as it's popped. Stops after the first poll that times out empty.
func runReplayFrames(args []string) {
	if *redisAddr == "" {
		log.Fatalf("replay-frames requires -redis-addr")
	}
	client, err := diagnostics.NewClient(*redisAddr, *redisPass, *redisDB)
	fatalIf(err)
	defer client.Close()

	for {
		result, err := client.BRPop(2*time.Second, "acu:raw_frames")
		fatalIf(err)
		if result == nil {
			return
		}
		fmt.Println(result[1])
	}
}

func fatalIf(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
