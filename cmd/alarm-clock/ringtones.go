package main

import (
	"github.com/spf13/cobra"
)

var ringtonesCmd = &cobra.Command{
	Use:   "ringtones",
	Short: "List the ringtone library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary(cfg)
		if err != nil {
			return err
		}
		selected := cfg.Settings().Ringtone
		for i := 0; i < lib.Len(); i++ {
			r := lib.At(i)
			mark := " "
			if i == selected {
				mark = "*"
			}
			cmd.Printf("%s %d  %-12s %2d notes  %5dms\n", mark, i, r.Name, len(r.Notes), r.Duration())
		}
		return nil
	},
}

func init() {
	ringtonesCmd.Flags().String("ringtones", "", "Ringtone library YAML file")
	rootCmd.AddCommand(ringtonesCmd)
}
