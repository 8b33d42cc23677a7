package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/tui"
	"github.com/san-kum/orbsim/internal/viz"
)

func liveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in a Bubble Tea view sized to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := hostLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			viz.SetTheme(theme)
			return viz.RunLive(cfg, viz.WithLogger(logger), viz.WithGIFPath(gifPath))
		},
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")
	cmd.Flags().StringVar(&gifPath, "gif", "orbsim.gif", "gif recording path")
	return cmd
}

func termCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "run the simulation on a raw tcell screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := hostLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()
			screen.HideCursor()

			return tui.NewHost(screen, cfg, tui.WithLogger(logger)).Run(cmd.Context())
		},
	}
	addSimFlags(cmd)
	return cmd
}
