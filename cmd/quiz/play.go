package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/andrewpaige1/lingocards-api/quiz"
)

// ErrQuit is returned when the player leaves before the last question.
var ErrQuit = errors.New("quiz abandoned")

// play drives s from the lines of in, ticking the countdown on every value of
// ticks, until the session completes. afterTick, when set, runs once each tick
// has been handled.
func play(ctx context.Context, s *quiz.Session, in io.Reader, out io.Writer, ticks <-chan time.Time, afterTick func()) (quiz.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := s.Start(); err != nil {
		return quiz.Summary{}, err
	}
	showQuestion(out, s)

	for s.State() != quiz.Completed {
		select {
		case <-ctx.Done():
			return s.Summary(), ctx.Err()

		case <-ticks:
			err := handleTick(out, s)
			if afterTick != nil {
				afterTick()
			}
			if err != nil {
				return s.Summary(), err
			}

		case line, ok := <-lines:
			if !ok || line == "q" {
				return s.Summary(), ErrQuit
			}
			if err := handleLine(out, s, line); err != nil {
				return s.Summary(), err
			}
		}
	}
	return s.Summary(), nil
}

func handleTick(out io.Writer, s *quiz.Session) error {
	q, _ := s.Current()
	timedOut, err := s.Tick()
	if err != nil {
		return err
	}
	if timedOut {
		fmt.Fprintf(out, "Time's up! The answer was %q.\n", q.CorrectAnswer)
		showQuestion(out, s)
		return nil
	}
	if left := s.TimeLeft(); s.State() == quiz.InProgress && (left == 10 || left == 5) {
		fmt.Fprintf(out, "[%ds left]\n", left)
	}
	return nil
}

func handleLine(out io.Writer, s *quiz.Session, line string) error {
	switch line {
	case "":
		return nil
	case "p":
		if err := s.Pause(); err != nil {
			fmt.Fprintln(out, "Nothing to pause.")
			return nil
		}
		fmt.Fprintf(out, "Paused with %ds left. Type r to resume.\n", s.TimeLeft())
		return nil
	case "r":
		if err := s.Resume(); err != nil {
			fmt.Fprintln(out, "Not paused.")
			return nil
		}
		fmt.Fprintln(out, "Resumed.")
		return nil
	}

	q, ok := s.Current()
	if !ok {
		return nil
	}
	answer := line
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Options) {
		answer = q.Options[n-1]
	}
	rec, err := s.Answer(answer)
	switch {
	case errors.Is(err, quiz.ErrNotInProgress):
		fmt.Fprintln(out, "The quiz is paused. Type r to resume.")
		return nil
	case err != nil:
		return err
	}

	if rec.IsCorrect {
		fmt.Fprintf(out, "Correct! +%d\n", rec.Points)
	} else {
		fmt.Fprintf(out, "Wrong. The answer was %q.\n", rec.CorrectAnswer)
	}
	showQuestion(out, s)
	return nil
}

func showQuestion(out io.Writer, s *quiz.Session) {
	q, ok := s.Current()
	if !ok {
		return
	}
	fmt.Fprintf(out, "\nQuestion %d/%d (%ds): %s\n", s.Index()+1, len(s.Questions()), s.TimeLeft(), q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
}

func printSummary(out io.Writer, sum quiz.Summary) {
	fmt.Fprintf(out, "\nScore: %d  Correct: %d/%d  Accuracy: %d%%  Avg time: %.2fs\n",
		sum.TotalScore, sum.CorrectCount, sum.TotalQuestions, sum.Accuracy, sum.AverageTimeSpent)
}
