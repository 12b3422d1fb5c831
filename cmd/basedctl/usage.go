// cmd/basedctl/usage.go
package main

import (
	"fmt"
	"io"
)

const programName = "basedctl"

func usage(w io.Writer) {
	const message = "Usage: %s [options] <address>\n" +
		"\t-h, --help\n" +
		"\t\tPrint the help message.\n" +
		"\t-i, --info\n" +
		"\t\tPrint all the device information.\n" +
		"\t-d, --device-status\n" +
		"\t\tPrint the device status information. This includes its name, language,\n" +
		"\t\tvoice-prompts, auto-off and noise cancelling settings.\n" +
		"\t-f, --firmware-version\n" +
		"\t\tPrint the firmware version on the device.\n" +
		"\t-s, --serial-number\n" +
		"\t\tPrint the serial number of the device.\n" +
		"\t-b, --battery-level\n" +
		"\t\tPrint the battery level of the device as a percent.\n" +
		"\t-a, --paired-devices\n" +
		"\t\tPrint the devices currently connected to the device.\n" +
		"\t\t!: indicates the current device\n" +
		"\t\t*: indicates other connected devices\n" +
		"\t--device-id\n" +
		"\t\tPrint the device id followed by the index revision.\n" +
		"\t-n <name>, --name=<name>\n" +
		"\t\tChange the name of the device.\n" +
		"\t-o <minutes>, --auto-off=<minutes>\n" +
		"\t\tChange the auto-off time.\n" +
		"\t\tminutes: never, 5, 20, 40, 60, 180\n" +
		"\t-c <level>, --noise-cancelling=<level>\n" +
		"\t\tChange the noise cancelling level.\n" +
		"\t\tlevel: high, low, off\n" +
		"\t-l <language>, --prompt-language=<language>\n" +
		"\t\tChange the voice-prompt language.\n" +
		"\t\tlanguage: en, fr, it, de, es, pt, zh, ko, nl, ja, sv\n" +
		"\t-v <switch>, --voice-prompts=<switch>\n" +
		"\t\tChange whether voice-prompts are on or off.\n" +
		"\t\tswitch: on, off\n" +
		"\t-p <status>, --pairing=<status>\n" +
		"\t\tChange whether the device is pairing.\n" +
		"\t\tstatus: on, off\n" +
		"\t-e <level>, --self-voice=<level>\n" +
		"\t\tChange the self voice level.\n" +
		"\t\tlevel: high, medium, low, off\n" +
		"\t--connect-device=<address>\n" +
		"\t\tAttempt to connect to the device at address.\n" +
		"\t--disconnect-device=<address>\n" +
		"\t\tDisconnect the device at address.\n" +
		"\t--remove-device=<address>\n" +
		"\t\tRemove the device at address from the pairing list.\n" +
		"\t--config=<path>\n" +
		"\t\tRead settings from a YAML or TOML profile.\n" +
		"\t\tDefault: $XDG_CONFIG_HOME/basedctl/config.yaml\n"

	fmt.Fprintf(w, message, programName)
}
