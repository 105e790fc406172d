package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VitoPalumboPodcast/Invalsi/internal/app"
	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/speech"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	logger, closeLog, err := setupFileLogging(v)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := i18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	var text string
	if path := v.GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		text = string(data)
	}

	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	events := st.EventRepo()
	src, err := newSource(cmd, v, events, logger)
	if err != nil {
		return err
	}

	opts := app.Options{
		Deps: screen.Deps{
			Source:       src,
			History:      history.NewLog(st.KVRepo(), history.WithLogger(logger)),
			Events:       events,
			Speaker:      speech.New(v.GetString("speech-command")),
			Logger:       logger,
			ExamDuration: v.GetDuration("exam-duration"),
			CanGenerate:  src.HasGenerator(),
		},
		InitialText: text,
	}
	if cmd.Flags().Changed("welcome") {
		welcome := v.GetBool("welcome")
		opts.Welcome = &welcome
	}

	logger.Info("starting", "version", version, "lang", i18n.Language(), "llm", src.HasGenerator())
	return app.Run(opts)
}
