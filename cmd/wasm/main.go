//go:build js && wasm

package main

import (
	"context"
	"syscall/js"
	"time"

	"github.com/goccy/go-json"
	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/kittclouds/thematic/internal/logging"
	"github.com/kittclouds/thematic/internal/story"
	"github.com/kittclouds/thematic/pkg/coverage"
	"github.com/kittclouds/thematic/pkg/kb"
	"github.com/kittclouds/thematic/pkg/recommend"
)

// Version info
const Version = "0.3.0"

const (
	dbName    = "thematic"
	storyFile = "story.json"
)

// Global state, replaced as a whole by loadStory and restoreStory
var (
	current *story.Story
	base    *kb.KnowledgeBase
	engine  *recommend.Engine
	idb     hackpadfs.FS
)

func main() {
	cfg := logging.DefaultConfig()
	cfg.Timestamp = false
	logging.Init(cfg)

	println("[Thematic] WASM Ready v" + Version)

	js.Global().Set("Thematic", js.ValueOf(map[string]interface{}{
		"version":      js.FuncOf(getVersion),
		"loadStory":    js.FuncOf(loadStory),
		"recommend":    js.FuncOf(recommendLinks),
		"coverage":     js.FuncOf(themeCoverage),
		"themes":       js.FuncOf(listThemes),
		"highlight":    js.FuncOf(highlight),
		"saveStory":    js.FuncOf(saveStory),
		"restoreStory": js.FuncOf(restoreStory),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// use swaps in s and rebuilds everything derived from it.
func use(s *story.Story) error {
	logger := logging.With().Str("bridge", "wasm").Logger()
	b := s.KnowledgeBase(kb.WithLogger(logger))
	e, err := recommend.NewEngine(b, recommend.DefaultConfig(), logger)
	if err != nil {
		return err
	}
	current, base, engine = s, b, e
	return nil
}

// loadStory: [storyJSON string]
func loadStory(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("loadStory requires 1 argument: storyJSON")
	}
	s, err := story.Decode([]byte(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	if err := use(s); err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{
		"title":  s.Title,
		"nodes":  len(s.Nodes),
		"themes": base.ThemeNames(),
	})
}

// recommend: [nodeId string, text? string]
// Returns the node's anywhere links, best first.
func recommendLinks(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("recommend requires at least 1 argument: nodeId")
	}
	if engine == nil {
		return errorResult("no story loaded")
	}

	node, ok := current.Node(args[0].String())
	if !ok {
		return errorResult("node not found: " + args[0].String())
	}
	from := node.Candidate()
	if len(args) > 1 && args[1].Type() == js.TypeString {
		from.Text = args[1].String()
	}

	start := time.Now()
	threshold := current.Threshold(engine.Config().Threshold)
	links := engine.AnywhereLinks(from, current.Candidates(), threshold)

	return jsonResult(map[string]interface{}{
		"links":      links,
		"threshold":  threshold,
		"durationUs": time.Since(start).Microseconds(),
	})
}

// coverage: [text string]
func themeCoverage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("coverage requires 1 argument: text")
	}
	if base == nil {
		return errorResult("no story loaded")
	}
	text := args[0].String()
	scorer := engine.Scorer()
	res := scorer.ThemeCoverage(base.ThemeNames(), text, false)
	return jsonResult(struct {
		coverage.ScoreResult
		Component float64 `json:"component"`
	}{res, scorer.ComponentCoverage(res.HitNames(), text)})
}

func listThemes(this js.Value, args []js.Value) interface{} {
	if base == nil {
		return errorResult("no story loaded")
	}
	return jsonResult(map[string]interface{}{
		"themes":     base.Themes(),
		"unresolved": base.Unresolved(),
		"cycles":     base.Cycles(),
	})
}

// highlight: [text string]
func highlight(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("highlight requires 1 argument: text")
	}
	if base == nil {
		return errorResult("no story loaded")
	}
	spans, prepared := base.Highlighter().Find(args[0].String())
	return jsonResult(map[string]interface{}{
		"text":  prepared,
		"spans": spans,
	})
}

func storyFS() (hackpadfs.FS, error) {
	if idb != nil {
		return idb, nil
	}
	fs, err := indexeddb.NewFS(context.Background(), dbName, indexeddb.Options{})
	if err != nil {
		return nil, err
	}
	idb = fs
	return idb, nil
}

// saveStory persists the loaded story to IndexedDB.
func saveStory(this js.Value, args []js.Value) interface{} {
	if current == nil {
		return errorResult("no story loaded")
	}
	fs, err := storyFS()
	if err != nil {
		return errorResult("failed to open idb fs: " + err.Error())
	}
	if err := story.Save(fs, storyFile, current); err != nil {
		return errorResult(err.Error())
	}
	return successResult("saved")
}

// restoreStory loads the story last saved to IndexedDB.
func restoreStory(this js.Value, args []js.Value) interface{} {
	fs, err := storyFS()
	if err != nil {
		return errorResult("failed to open idb fs: " + err.Error())
	}
	s, err := story.Load(fs, storyFile)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := use(s); err != nil {
		return errorResult(err.Error())
	}
	return successResult("restored " + s.Title)
}

func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to encode result: " + err.Error())
	}
	return string(jsonBytes)
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	logging.Error().Str("bridge", "wasm").Msg(msg)
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
