// Command browserctl is an interactive client for the browserd automation
// daemon. It hosts the gateway, the action recorder/player, and the control
// panel, and falls back to simulated dispatch when the daemon is down.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
	"github.com/adminGCT4545/browserpilot/pkg/config"
	"github.com/adminGCT4545/browserpilot/pkg/gateway"
	"github.com/adminGCT4545/browserpilot/pkg/logging"
	"github.com/adminGCT4545/browserpilot/pkg/panel"
	"github.com/adminGCT4545/browserpilot/pkg/recorder"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		serverURL  = flag.String("server", "", "automation daemon base URL (overrides config)")
		preview    = flag.Bool("preview", false, "confirm each action before dispatch")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Client.ServerURL = *serverURL
	}

	logger, logErr := logging.NewLogger("browserctl")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	app, err := newApp(cfg, *preview, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	app.run()
}

// app wires the client-side components together.
type app struct {
	cfg      config.Config
	gw       *gateway.Gateway
	rec      *recorder.Recorder
	player   *recorder.Player
	pan      *panel.Panel
	store    *recorder.Store
	stdin    *bufio.Reader
	log      *logging.Logger
	simulate bool
}

func newApp(cfg config.Config, preview bool, logger *logging.Logger) (*app, error) {
	stdin := bufio.NewReader(os.Stdin)

	// Connectivity probe decides the initial transport; the gateway still
	// falls back per-action if the daemon disappears later.
	var transport gateway.Transport
	httpTransport := gateway.NewHTTPTransport(cfg.Client.ServerURL, cfg.Client.RequestTimeout)
	probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	probeErr := httpTransport.Health(probeCtx)
	cancel()

	simulate := probeErr != nil
	if simulate {
		fmt.Printf("automation server unreachable (%v), running in simulation mode\n", probeErr)
		transport = gateway.NewSimulatedTransport()
	} else {
		transport = httpTransport
	}

	var confirmer gateway.Confirmer
	if preview {
		confirmer = &stdinConfirmer{stdin: stdin}
	}

	gw := gateway.New(gateway.Config{
		Transport:    transport,
		Confirmer:    confirmer,
		HistoryLimit: cfg.Client.HistoryLimit,
		Logger:       logger,
	})

	store, err := recorder.NewStore(cfg.Client.SequencesPath)
	if err != nil {
		return nil, fmt.Errorf("sequence store: %w", err)
	}

	return &app{
		cfg:      cfg,
		gw:       gw,
		rec:      recorder.New(gw, logger),
		player:   recorder.NewPlayer(gw, cfg.Playback.Pause, cfg.Playback.DelayCap),
		pan:      panel.New(gw),
		store:    store,
		stdin:    stdin,
		log:      logger,
		simulate: simulate,
	}, nil
}

func (a *app) run() {
	fmt.Println("browserctl ready; type 'help' for commands")
	a.pan.Open()

	for {
		fmt.Print("> ")
		line, err := a.stdin.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		a.dispatch(fields[0], fields[1:])
	}
}

func (a *app) dispatch(cmd string, args []string) {
	ctx := context.Background()

	switch cmd {
	case "help":
		printHelp()
	case "status":
		fmt.Printf("active=%v sessionId=%s zoom=%d%% recording=%v simulated=%v\n",
			a.gw.Active(), a.gw.SessionID(), a.pan.Zoom(), a.rec.Recording(), a.simulate)
	case "launch":
		url := ""
		if len(args) > 0 {
			url = args[0]
		}
		a.execute(ctx, automation.ActionLaunch, automation.Params{"url": url})
	case "click":
		a.click(ctx, args)
	case "type":
		if len(args) == 0 {
			fmt.Println("usage: type <text>")
			return
		}
		a.execute(ctx, automation.ActionType, automation.Params{"text": strings.Join(args, " ")})
	case "scroll":
		a.scroll(ctx, args)
	case "shot":
		a.execute(ctx, automation.ActionScreenshot, nil)
	case "forms":
		a.execute(ctx, automation.ActionDetectForms, nil)
	case "elements":
		a.execute(ctx, automation.ActionDetectElements, nil)
	case "fill":
		if len(args) < 2 {
			fmt.Println("usage: fill <fieldId> <value>")
			return
		}
		a.execute(ctx, automation.ActionFillForm, automation.Params{
			"fieldId": args[0],
			"value":   strings.Join(args[1:], " "),
		})
	case "close":
		a.execute(ctx, automation.ActionClose, nil)
	case "zoom":
		a.zoom(ctx, args)
	case "pick":
		a.pick(ctx, args)
	case "record":
		a.record(args)
	case "actions":
		for i, action := range a.rec.Buffer() {
			fmt.Printf("%2d. %-14s delay=%s params=%v\n", i, action.Type, action.Delay.Round(time.Millisecond), action.Params)
		}
	case "remove":
		if len(args) != 1 {
			fmt.Println("usage: remove <index>")
			return
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("index must be a number")
			return
		}
		if err := a.rec.Remove(index); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "save":
		if len(args) == 0 {
			fmt.Println("usage: save <name>")
			return
		}
		seq, err := a.rec.Save(a.store, strings.Join(args, " "))
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("saved sequence %q (%s) with %d actions\n", seq.Name, seq.ID, len(seq.Actions))
	case "play":
		if err := a.rec.Play(ctx, a.player); err != nil {
			fmt.Printf("playback failed: %v\n", err)
		} else {
			fmt.Println("playback complete")
		}
	case "sequences":
		seqs, err := a.store.List()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, seq := range seqs {
			fmt.Printf("%s  %-20s %d actions  %s\n", seq.ID, seq.Name, len(seq.Actions), seq.Created.Format(time.RFC3339))
		}
	case "replay":
		if len(args) != 1 {
			fmt.Println("usage: replay <sequence-id>")
			return
		}
		seq, err := a.store.Get(args[0])
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		if err := a.rec.PlaySequence(ctx, a.player, seq); err != nil {
			fmt.Printf("playback failed: %v\n", err)
		} else {
			fmt.Println("playback complete")
		}
	case "delete":
		if len(args) != 1 {
			fmt.Println("usage: delete <sequence-id>")
			return
		}
		if err := a.store.Delete(args[0]); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "history":
		for _, entry := range a.gw.History() {
			marker := "ok"
			if !entry.Success {
				marker = "FAILED"
			}
			if entry.Simulated {
				marker += " (simulated)"
			}
			fmt.Printf("%s  %-14s %-18s %s\n", entry.Time.Format("15:04:05"), entry.Kind, marker, entry.Message)
		}
	default:
		fmt.Printf("unknown command %q; type 'help'\n", cmd)
	}
}

func (a *app) click(ctx context.Context, args []string) {
	switch len(args) {
	case 1:
		a.execute(ctx, automation.ActionClick, automation.Params{"selector": args[0]})
	case 2:
		x, errX := strconv.ParseFloat(args[0], 64)
		y, errY := strconv.ParseFloat(args[1], 64)
		if errX != nil || errY != nil {
			fmt.Println("usage: click <selector> | click <x> <y>")
			return
		}
		a.execute(ctx, automation.ActionClick, automation.Params{"x": x, "y": y})
	default:
		fmt.Println("usage: click <selector> | click <x> <y>")
	}
}

func (a *app) scroll(ctx context.Context, args []string) {
	direction := "down"
	if len(args) > 0 {
		direction = args[0]
	}
	params := automation.Params{"direction": direction}
	if len(args) > 1 {
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("usage: scroll <up|down> [amount]")
			return
		}
		params["amount"] = float64(amount)
	}
	a.execute(ctx, automation.ActionScroll, params)
}

func (a *app) zoom(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Printf("zoom is %d%%\n", a.pan.Zoom())
		return
	}
	switch args[0] {
	case "in":
		fmt.Printf("zoom %d%%\n", a.pan.ZoomIn())
	case "out":
		fmt.Printf("zoom %d%%\n", a.pan.ZoomOut())
	case "reset":
		fmt.Printf("zoom %d%%\n", a.pan.ResetZoom())
	case "apply":
		result, err := a.pan.ApplyZoom(ctx)
		a.report(result, err)
		return
	default:
		fmt.Println("usage: zoom [in|out|reset|apply]")
		return
	}
}

func (a *app) pick(ctx context.Context, args []string) {
	if len(args) != 4 {
		fmt.Println("usage: pick <previewW> <previewH> <px> <py>")
		return
	}
	w, _ := strconv.Atoi(args[0])
	h, _ := strconv.Atoi(args[1])
	px, errX := strconv.ParseFloat(args[2], 64)
	py, errY := strconv.ParseFloat(args[3], 64)
	if errX != nil || errY != nil {
		fmt.Println("usage: pick <previewW> <previewH> <px> <py>")
		return
	}

	a.pan.SetPreviewSize(w, h)
	a.pan.TogglePicker()
	result, err := a.pan.PickAt(ctx, px, py)
	a.report(result, err)
}

func (a *app) record(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: record <start|stop>")
		return
	}
	switch args[0] {
	case "start":
		if err := a.rec.StartRecording(); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Println("recording")
	case "stop":
		a.rec.StopRecording()
		fmt.Printf("stopped; %d actions in buffer\n", len(a.rec.Buffer()))
	default:
		fmt.Println("usage: record <start|stop>")
	}
}

func (a *app) execute(ctx context.Context, kind automation.ActionKind, params automation.Params) {
	// Matches the disabled-controls rule: no second dispatch while one is
	// awaiting its result.
	if a.gw.InFlight() {
		fmt.Println("an action is already in progress")
		return
	}
	result, err := a.gw.ExecuteAction(ctx, kind, params)
	a.report(result, err)
}

func (a *app) report(result *automation.Result, err error) {
	if err != nil {
		if errors.Is(err, gateway.ErrUserCancelled) {
			fmt.Println("cancelled")
			return
		}
		fmt.Printf("error: %v\n", err)
		return
	}
	if result.Success {
		fmt.Printf("ok: %s\n", result.Message)
	} else if gateway.IsNoActiveSession(result) {
		fmt.Println("failed: no active session; run 'launch' first")
	} else {
		fmt.Printf("failed: %s\n", result.Message)
	}
	if result.Data != nil {
		fmt.Printf("data: %+v\n", result.Data)
	}
}

// stdinConfirmer previews actions on stdout and reads a y/n decision.
type stdinConfirmer struct {
	stdin *bufio.Reader
}

func (c *stdinConfirmer) Confirm(_ context.Context, action automation.Action) (bool, error) {
	fmt.Printf("execute %s %v? [y/N] ", action.Type, action.Params)
	line, err := c.stdin.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func printHelp() {
	fmt.Println(`commands:
  launch [url]              open the shared browser page
  click <selector>|<x> <y>  click an element or coordinate
  type <text>               type into the focused element
  scroll [up|down] [px]     scroll the page
  shot                      capture a screenshot
  forms / elements          detect form fields / clickable elements
  fill <fieldId> <value>    fill a form field
  zoom [in|out|reset|apply] adjust panel zoom
  pick <pw> <ph> <px> <py>  map a preview click to a page click
  record start|stop         toggle action recording
  actions / remove <i>      inspect / edit the recorded buffer
  save <name>               persist the buffer as a sequence
  play                      replay the buffer
  sequences                 list saved sequences
  replay <id> / delete <id> replay or remove a saved sequence
  history                   show the action log
  status                    show gateway/panel state
  close                     close the browser session
  quit                      exit`)
}
