// shelf - Terminal Modular Furniture Configurator
// Place holes on a modular cabinet piece and preview it in a room, with
// full 3D rendering in your terminal.
//
// Controls:
//
//	Drag a hole    - Slide it along the cabinet
//	Drag elsewhere - Orbit the camera
//	Scroll, +/-    - Zoom in/out
//	Arrow keys     - Orbit the camera
//	A / R          - Add / remove a hole
//	N              - Toggle day/night lighting
//	L              - Aim the light with the pointer, click to set
//	Shift+L        - Return the light to the day/night presets
//	P              - Toggle perspective/orthographic projection
//	M              - Toggle mirror planes
//	V              - Switch between module editor and room view
//	X              - Toggle wireframe mode (x-ray)
//	T              - Toggle texture (room view)
//	0              - Reset the camera
//	?              - Toggle HUD overlay
//	Esc            - Cancel a drag or light aiming, or quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/shelf/internal/config"
)

// options are the command-line flags. Flags left unset keep the config
// file's value.
type options struct {
	configPath string
	verbose    bool
	logFile    string
	watch      bool
	snapshot   string
	size       string

	// Config overrides, read back through the flag set.
	texture string
	fps     int
	bg      string
	view    string
	ortho   bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   "shelf [room-model.glb]",
		Short: "Terminal modular furniture configurator",
		Long: `shelf renders a modular cabinet piece in the terminal and lets you
place holes along it by dragging them with the mouse. A second view shows a
room model. Missing model files are replaced by simple built-in shapes.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := effectiveConfig(cmd, args)
			if err != nil {
				return err
			}
			logger, closeLog, err := commandLogger(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := withLogger(cmd.Context(), logger)
			if opts.snapshot != "" {
				return runSnapshot(ctx, cfg, opts)
			}
			return runViewer(ctx, cfg, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	run := root.Flags()
	run.StringVar(&opts.texture, "texture", "", "texture image for the room model (PNG/JPG)")
	run.IntVar(&opts.fps, "fps", 0, "target frames per second")
	run.StringVar(&opts.bg, "bg", "", "background color (#rrggbb), overrides the lighting backdrop")
	run.StringVar(&opts.logFile, "log-file", "", "write logs to this file while the viewer runs")
	run.BoolVar(&opts.watch, "watch", false, "reload models when their files change")
	run.StringVar(&opts.view, "view", "", "starting view: room or module")
	run.BoolVar(&opts.ortho, "ortho", true, "orthographic projection in the module view")
	run.StringVar(&opts.snapshot, "snapshot", "", "render one frame to this PNG file and exit")
	run.StringVar(&opts.size, "size", "160x45", "terminal size in cells for --snapshot")

	root.AddCommand(newConfigCmd(&opts))
	return root
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// effectiveConfig loads the config file and applies the flags the user
// set on top of it.
func effectiveConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := loadConfig(path)
	if err != nil {
		return config.Config{}, err
	}

	if len(args) > 0 {
		cfg.Models.Room = args[0]
	}
	if flags.Changed("texture") {
		cfg.Render.Texture, _ = flags.GetString("texture")
	}
	if flags.Changed("fps") {
		cfg.Render.FPS, _ = flags.GetInt("fps")
	}
	if flags.Changed("bg") {
		cfg.Render.Background, _ = flags.GetString("bg")
	}
	if flags.Changed("view") {
		v, _ := flags.GetString("view")
		cfg.Render.View = strings.ToLower(v)
	}
	if flags.Changed("ortho") {
		cfg.Render.Projection = config.ProjectionPerspective
		if ortho, _ := flags.GetBool("ortho"); ortho {
			cfg.Render.Projection = config.ProjectionOrtho
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// commandLogger builds the one logger for a run. The viewer owns the
// terminal, so it logs to --log-file or nowhere; a snapshot logs to stderr.
func commandLogger(cmd *cobra.Command, opts options) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if opts.verbose {
		level = log.DebugLevel
	}
	if opts.snapshot != "" {
		return sessionLogger(cmd.ErrOrStderr(), level), func() error { return nil }, nil
	}
	w, closeLog, err := openLog(opts.logFile)
	if err != nil {
		return nil, nil, err
	}
	return sessionLogger(w, level), closeLog, nil
}

func parseSize(s string) (cols, rows int, err error) {
	if _, err := fmt.Sscanf(s, "%dx%d", &cols, &rows); err != nil {
		return 0, 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if cols < 1 || rows < 1 {
		return 0, 0, fmt.Errorf("parse size %q: must be positive", s)
	}
	return cols, rows, nil
}

func runSnapshot(ctx context.Context, cfg config.Config, opts options) error {
	logger := loggerFromContext(ctx)
	cols, rows, err := parseSize(opts.size)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, cols, rows, logger)
	if err != nil {
		return err
	}
	return a.snapshot(opts.snapshot)
}

func runViewer(ctx context.Context, cfg config.Config, opts options) error {
	logger := loggerFromContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	a, err := newApp(ctx, cfg, width, height, logger)
	if err != nil {
		return err
	}

	var reloads <-chan reload
	if opts.watch {
		var closeWatch func() error
		reloads, closeWatch, err = a.watch(ctx)
		if err != nil {
			return fmt.Errorf("watch models: %w", err)
		}
		defer closeWatch()
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	logger.Info("viewer started", "cols", width, "rows", height, "view", cfg.Render.View)
	return a.run(ctx, term, reloads)
}
