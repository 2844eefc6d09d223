// Command alarm-clock runs a menu-driven alarm clock on a Raspberry Pi and
// publishes alarm and settings changes to MQTT.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
