package main

// Small CLI tool used to replay recorded landmark frames (JSON lines) through the form engine.

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/2beens/formlens/internal/analysis"
	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"

	log "github.com/sirupsen/logrus"
)

// a pretty printed frame of 33 landmarks stays well below this
const maxLineBytes = 1024 * 1024

type summary struct {
	Frames    int
	Evaluated int
	Skipped   int
	Reps      int
	Exercise  string
	accTotal  float64
}

func (s summary) AvgAccuracy() float64 {
	if s.Evaluated == 0 {
		return 0
	}
	return s.accTotal / float64(s.Evaluated)
}

func main() {
	inPath := flag.String("in", "-", "JSON lines file with one {\"landmarks\": {...}} frame per line, - for stdin")
	exercise := flag.String("exercise", "", "exercise to select before the first frame")
	verbose := flag.Bool("v", false, "log every frame result")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	in := os.Stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			log.Fatalf("open frames file: %s", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warnf("close frames file: %s", err)
			}
		}()
		in = f
	}

	catalog, err := exercises.DefaultCatalog()
	if err != nil {
		log.Fatalf("exercise catalog: %s", err)
	}

	sum, err := replay(in, os.Stdout, formcheck.NewEngine(catalog), *exercise)
	if err != nil {
		log.Fatalf("replay frames: %s", err)
	}

	log.WithFields(log.Fields{
		"frames":    sum.Frames,
		"evaluated": sum.Evaluated,
		"skipped":   sum.Skipped,
		"exercise":  sum.Exercise,
		"reps":      sum.Reps,
		"accuracy":  fmt.Sprintf("%.2f", sum.AvgAccuracy()),
	}).Info("replay done")
}

// replay feeds every frame of r through engine, in order, and writes one
// Result per line to w. Malformed lines are skipped and counted.
func replay(r io.Reader, w io.Writer, engine *formcheck.Engine, exercise string) (summary, error) {
	var state formcheck.State
	if exercise != "" {
		var err error
		if state, err = engine.SelectExercise(state, exercise); err != nil {
			return summary{}, err
		}
	}

	sum := summary{}
	enc := json.NewEncoder(w)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var frame analysis.AnalyzeRequest
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Landmarks == nil {
			log.Warnf("line %d: skipping frame without landmarks", line)
			sum.Skipped++
			continue
		}

		var res formcheck.Result
		state, res = engine.Analyze(state, frame.Landmarks, frame.Exercise)
		sum.Frames++
		if res.Success {
			sum.Evaluated++
			sum.accTotal += res.Accuracy
		}
		log.Debugf("line %d: %s %v reps=%d acc=%.2f", line, res.Message, res.Feedback, res.Reps, res.Accuracy)

		if err := enc.Encode(res); err != nil {
			return sum, fmt.Errorf("write result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return sum, fmt.Errorf("line %d longer than %d bytes", line+1, maxLineBytes)
		}
		return sum, fmt.Errorf("read frames: %w", err)
	}

	sum.Exercise = state.Exercise
	sum.Reps = state.Reps
	return sum, nil
}
