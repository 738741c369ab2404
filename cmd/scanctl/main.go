package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/l3lasx/poc-barcodescanner/camera/gstcam"
	"github.com/l3lasx/poc-barcodescanner/config"
	"github.com/l3lasx/poc-barcodescanner/scanner"
)

var (
	engine string
	mode   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scanctl",
		Short: "Barcode scanner CLI",
		Long:  `A command-line tool to decode barcodes from still images and inspect camera devices.`,
	}

	rootCmd.PersistentFlags().StringVarP(&engine, "engine", "e", "zxing", "Decode engine (zxing or goqr)")
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "all", "Symbology mode for zxing (all, qr, 1d)")

	rootCmd.AddCommand(decodeCommand())
	rootCmd.AddCommand(devicesCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image-file>",
		Short: "Decode one barcode or QR code from a still image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			img, _, err := image.Decode(f)
			if err != nil {
				return fmt.Errorf("decode image %s: %w", args[0], err)
			}

			dec, err := scanner.BuildDecoder(config.DecoderConfig{Engine: engine, Mode: mode})
			if err != nil {
				return err
			}

			result, err := dec.Decode(img)
			if err != nil {
				return fmt.Errorf("no code found: %w", err)
			}
			fmt.Printf("%s\t%s\n", result.Format, result.Text)
			return nil
		},
	}
}

func devicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List camera devices (triggers the permission prompt)",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := gstcam.New()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := backend.Probe(ctx); err != nil {
				return err
			}
			devices, err := backend.Enumerate(ctx)
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("no camera devices found")
				return nil
			}
			for _, d := range devices {
				fmt.Printf("%s\t%s\t%s\n", d.ID, d.Facing, d.Label)
			}
			return nil
		},
	}
}
