package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/formcoach/internal/engine"
	"github.com/claude/formcoach/internal/localstore"
	"github.com/claude/formcoach/internal/models"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// frameLine is one recorded pose frame: milliseconds since recording start
// plus the landmark set.
type frameLine struct {
	TMillis   int64            `json:"t_ms"`
	Landmarks models.PoseFrame `json:"landmarks"`
}

func main() {
	exercisesPath := flag.String("exercises", "exercises.yaml", "path to exercise definitions")
	exerciseID := flag.String("exercise", "", "exercise id to replay against")
	framesPath := flag.String("frames", "", "path to a JSONL frame recording")
	dbPath := flag.String("db", "", "sqlite result db; result is printed but not stored when empty")
	calibrationSec := flag.Int("calibration", 3, "calibration window in seconds")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("formcoach-replay", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exerciseID == "" || *framesPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: formcoach-replay -exercise <id> -frames <recording.jsonl> [-exercises <file>] [-db <file>]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	exercises, err := models.LoadExercises(*exercisesPath)
	if err != nil {
		log.Error("failed to load exercises", "error", err)
		os.Exit(1)
	}

	var def models.ExerciseDefinition
	found := false
	for _, d := range exercises {
		if d.ID == *exerciseID {
			def, found = d, true
			break
		}
	}
	if !found {
		log.Error("unknown exercise", "id", *exerciseID)
		os.Exit(1)
	}

	f, err := os.Open(*framesPath)
	if err != nil {
		log.Error("failed to open recording", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	var result *models.ExerciseResult
	cfg := engine.Config{Calibration: time.Duration(*calibrationSec) * time.Second}
	sess, err := engine.NewSession(def, cfg, func(ev engine.Event) {
		switch ev.Kind {
		case engine.EventRepCounted:
			log.Info("rep", "set", ev.Set, "rep", ev.Rep)
		case engine.EventSetComplete:
			log.Info("set complete", "set", ev.Set, "reps", ev.Rep)
		case engine.EventSessionComplete:
			result = ev.Result
		}
	})
	if err != nil {
		log.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	// Replay on a virtual clock anchored at the recording start. Ticks are
	// interpolated once per virtual second so rest periods elapse.
	base := time.Now()
	lastTick := base
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		var line frameLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			log.Warn("skipping malformed line", "line", lineNo, "error", err)
			continue
		}

		now := base.Add(time.Duration(line.TMillis) * time.Millisecond)
		for tick := lastTick.Add(time.Second); !tick.After(now); tick = tick.Add(time.Second) {
			sess.Tick(tick)
			lastTick = tick
		}
		sess.HandleFrame(line.Landmarks, now)
	}
	if err := scanner.Err(); err != nil {
		log.Error("failed to read recording", "error", err)
		os.Exit(1)
	}

	if result == nil {
		log.Warn("recording ended before the session completed", "state", sess.State())
		os.Exit(2)
	}

	if *dbPath != "" {
		store, err := localstore.Open(*dbPath)
		if err != nil {
			log.Error("failed to open result store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.InsertExerciseResult(context.Background(), *result); err != nil {
			log.Error("failed to store result", "error", err)
			os.Exit(1)
		}
		log.Info("result stored", "id", result.ID, "db", *dbPath)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
