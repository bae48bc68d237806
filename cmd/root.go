/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pixlhub-gin",
	Short: "Data labeling platform API server",
	Long: `PixlHub Gin is a REST API server for multi-format data labeling.
It manages task queues for label/review/completed stages, stores
annotations, and exports labeled datasets in ML-standard formats
(COCO, YOLO, YOLOv8-Seg, Pascal VOC, JSON, CSV).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
