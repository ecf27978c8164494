package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/yoockh/interviewpilot/internal/locker"
	"github.com/yoockh/interviewpilot/internal/logger"
	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/questions"
	"github.com/yoockh/interviewpilot/internal/repositories/memory"
	"github.com/yoockh/interviewpilot/internal/services"
)

const stopCommand = "/stop"

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal",
	Long: `practice runs one interview against an in-memory transcript. Questions come
from the configured LLM, or from the built-in question bank when LLM_PROVIDER=none.
Type /stop or press Ctrl-C to end early.`,
	RunE: runPractice,
}

func init() {
	f := practiceCmd.Flags()
	f.String("type", "", "interview type: hr or technical (asked when empty)")
	f.String("role", "", "target role, e.g. backend")
	f.StringSlice("techs", nil, "technologies for a technical interview")
	f.String("difficulty", "", "beginner, intermediate or advanced")
}

func runPractice(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateProviders(); err != nil {
		return err
	}
	log := logger.New("warn", "text")
	ctx := cmd.Context()

	// only the LLM matters here; transcripts never leave the process
	cfg.STTProvider, cfg.AudioBucket = "none", ""
	d := &deps{cfg: cfg, log: log}
	if err := d.openProviders(ctx); err != nil {
		return err
	}
	defer d.Close()
	d.questions = questions.NewStaticBank(questions.BuiltinQuestions())

	svc := services.NewInterviewService(memory.NewInterviewRepo(), d.source(), nil, services.InterviewOptions{
		MaxQuestions:    cfg.MaxQuestions,
		SummaryTop:      cfg.SummaryTop,
		QuestionTimeout: cfg.QuestionTimeout,
		Locker:          locker.NewLocal(),
		Logger:          log,
	})

	in, err := practiceInput(cmd)
	if err != nil {
		return err
	}

	iv, q, err := svc.Start(ctx, in)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nInterviewer: %s\n", q.Text)

	for {
		answer, err := (&promptui.Prompt{Label: "You"}).Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || strings.TrimSpace(answer) == stopCommand {
			res, err := svc.Stop(context.WithoutCancel(ctx), iv.ID)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			continue
		}

		reply, err := svc.SubmitAnswer(ctx, iv.ID, answer)
		if err != nil {
			return err
		}
		if reply.Done {
			printResult(cmd, reply.Result)
			return nil
		}
		fmt.Fprintf(out, "\nInterviewer: %s\n", reply.Question.Text)
	}
}

func practiceInput(cmd *cobra.Command) (services.StartInput, error) {
	f := cmd.Flags()
	kind, _ := f.GetString("type")
	role, _ := f.GetString("role")
	techs, _ := f.GetStringSlice("techs")
	difficulty, _ := f.GetString("difficulty")

	if kind == "" {
		sel := promptui.Select{
			Label: "Interview type",
			Items: []string{string(models.KindHR), string(models.KindTechnical)},
		}
		_, picked, err := sel.Run()
		if err != nil {
			return services.StartInput{}, err
		}
		kind = picked
	}

	return services.StartInput{
		UserID:       "local",
		Kind:         models.Kind(kind),
		Role:         role,
		Technologies: techs,
		Difficulty:   models.Difficulty(difficulty),
	}, nil
}

func printResult(cmd *cobra.Command, res *services.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", res.Summary)
	if len(res.Matched) > 0 {
		fmt.Fprintf(out, "Topics covered: %s\n", strings.Join(res.Matched, ", "))
	}
}
