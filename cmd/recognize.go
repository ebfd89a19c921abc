package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"intake/model"
	"intake/provider"
	"intake/ui"
)

type recognizeOptions struct {
	kind        string
	instruction string
	entityType  string
	priority    string
	clipboard   bool
	save        bool
	name        string
	jsonOutput  bool
	noCache     bool
}

func newRecognizeCmd() *cobra.Command {
	var o recognizeOptions

	cmd := &cobra.Command{
		Use:   "recognize [file|-]",
		Short: "Extract structured data from a file, stdin or the clipboard",
		Long: `Recognize sends content to the model and prints the tags, normalized values
and suggested entity type it finds. Images are sent as data URLs; text-like
files and stdin are sent as text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognize(cmd, args, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.kind, "kind", "k", "", "Override content kind detection (e.g. text, image, json, markdown)")
	f.StringVarP(&o.instruction, "instruction", "i", "", "Additional request for the model")
	f.StringVarP(&o.entityType, "type", "t", "", "Expected entity type")
	f.StringVar(&o.priority, "priority", "", "Priority: low, medium or high (high uses more reasoning)")
	f.BoolVar(&o.clipboard, "clipboard", false, "Read content from the clipboard")
	f.BoolVarP(&o.save, "save", "s", false, "Save the result as an entity")
	f.StringVar(&o.name, "name", "", "Entity name when saving")
	f.BoolVar(&o.jsonOutput, "json", false, "Print the result as JSON")
	f.BoolVar(&o.noCache, "no-cache", false, "Ignore cached recognitions")
	return cmd
}

func runRecognize(cmd *cobra.Command, args []string, o recognizeOptions) error {
	var kind model.DataKind
	if o.kind != "" {
		k, ok := model.ParseKind(o.kind)
		if !ok {
			return fmt.Errorf("unknown kind %q", o.kind)
		}
		kind = k
	}
	priority, err := model.ParseLevel(o.priority)
	if err != nil {
		return err
	}

	content, detected, err := inputSource{clipboard: o.clipboard, stdin: cmd.InOrStdin()}.read(args)
	if err != nil {
		return err
	}
	if kind == "" {
		kind = detected
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.client(&model.DataContext{
		Operation:  model.OpAnalyze,
		EntityType: o.entityType,
		Priority:   priority,
	})
	if err != nil {
		return err
	}

	show := !o.jsonOutput && interactive(cmd)
	result, err := ui.RunWithSpinner(cmd.ErrOrStderr(), show, "Recognizing "+string(kind)+"...", func() (model.RecognitionResult, error) {
		return client.Recognize(cmd.Context(), content, provider.RecognizeOptions{
			Kind:        kind,
			Instruction: o.instruction,
			SkipCache:   o.noCache,
		})
	})
	if err != nil {
		return err
	}

	var saved *model.Entity
	if o.save {
		e := model.EntityFromRecognition(result, o.name)
		if o.entityType != "" && result.SuggestedType == "" {
			e.Type = o.entityType
		}
		if err := a.store.Save(&e); err != nil {
			return fmt.Errorf("failed to save entity: %w", err)
		}
		saved = &e
	}

	out := cmd.OutOrStdout()
	if o.jsonOutput {
		if saved != nil {
			return writeJSON(out, saved)
		}
		return writeJSON(out, result)
	}

	fmt.Fprint(out, ui.RenderRecognition(result, defaultWidth))
	if saved != nil {
		fmt.Fprintln(out, ui.SuccessStyle.Render("Saved "+saved.Type+" "+saved.ID))
	}
	return nil
}
