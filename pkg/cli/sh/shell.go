// Package sh provides the interactive shell of k5cli. Command sets
// register themselves with AddCmds from their init funcs.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/env"
	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/link"
	"github.com/robotalks/uvk5.go/pkg/telemetry/mqtt"
	"github.com/robotalks/uvk5.go/pkg/uvk5"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *env.Config
	Bands   model.Bands
	Session *Session

	queue    *mqtt.Queue
	progress *progressRenderer
}

// Session is the radio connection and its engine. Radio is nil for an
// offline session holding a loaded image.
type Session struct {
	Port      string
	Radio     *uvk5.Radio
	Engine    *clone.Engine
	Publisher *mqtt.Publisher
}

// Connected tells whether a radio is attached.
func (s *Session) Connected() bool {
	return s != nil && s.Radio != nil
}

// ErrNotConnected is returned by commands needing a radio.
var ErrNotConnected = errors.New("not connected")

// ErrNoImage is returned by commands needing a downloaded or loaded image.
var ErrNoImage = errors.New("no image, download or load one first")

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) (*Shell, error) {
	bands, err := conf.Bands()
	if err != nil {
		return nil, fmt.Errorf("band plan: %w", err)
	}
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Bands:  bands,
	}
	if s.Interactive && !s.OutputJSON {
		s.progress = &progressRenderer{w: os.Stderr}
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if !ShellFrom(c).Session.Connected() {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Engine returns the engine of the current session, nil if none.
func (s *Shell) Engine() *clone.Engine {
	if s.Session == nil {
		return nil
	}
	return s.Session.Engine
}

// Model returns a model over a copy of the session image.
func (s *Shell) Model() (*model.Model, error) {
	e := s.Engine()
	if e == nil || e.State() != clone.Ready {
		return nil, ErrNoImage
	}
	return model.New(e.Image(), model.WithBands(s.Bands))
}

// Edit runs fn on a model of the session image and keeps the changes
// only when fn succeeds.
func (s *Shell) Edit(fn func(*model.Model) error) error {
	e := s.Engine()
	if e == nil {
		return ErrNoImage
	}
	err := e.Edit(func(img *layout.Image) error {
		m, err := model.New(img, model.WithBands(s.Bands))
		if err != nil {
			return err
		}
		return fn(m)
	})
	if errors.Is(err, clone.ErrNotReady) {
		return ErrNoImage
	}
	return err
}

// Output prints v as JSON in JSON mode, otherwise calls text.
func (s *Shell) Output(c *ishell.Context, v interface{}, text func()) {
	if !s.OutputJSON {
		text()
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

func (s *Shell) newEngine(port string, radio *uvk5.Radio) *Session {
	sess := &Session{Port: port, Radio: radio}
	opts := append(s.Config.EngineOptions(),
		clone.WithValidator(model.Validator(model.WithBands(s.Bands))),
		clone.WithReset(true),
	)
	if s.progress != nil {
		opts = append(opts, clone.WithProgress(s.progress.Update))
	}
	if s.queue != nil {
		sess.Publisher = mqtt.NewPublisher(s.queue, s.Config.ID())
		opts = append(opts, clone.WithNotifier(sess.Publisher), clone.WithProgress(sess.Publisher.Progress))
	}
	if radio != nil {
		sess.Engine = uvk5.UVK5.NewEngine(radio, false, opts...)
	} else {
		opts = append(uvk5.UVK5.EngineOptions(false), opts...)
		sess.Engine = clone.New(offline{}, uvk5.MemSize, opts...)
	}
	return sess
}

// offline is the device of a session without a radio.
type offline struct{}

func (offline) ReadBlock(context.Context, int, int) ([]byte, error) { return nil, ErrNotConnected }
func (offline) WriteBlock(context.Context, int, []byte) error      { return ErrNotConnected }

// Connect opens a radio on port and starts a session. A ready image of
// the previous session is carried over.
func (s *Shell) Connect(port string) error {
	if err := s.connectQueue(); err != nil {
		return err
	}
	s.Disconnect()
	var img *layout.Image
	if e := s.Engine(); e != nil && e.State() == clone.Ready {
		img = e.Image()
	}
	if port == "" {
		port = s.Config.Port
	}
	radio, err := s.Config.NewRadio(port)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := radio.Hello(ctx); err != nil {
		radio.Close()
		return fmt.Errorf("%s: %w", port, err)
	}
	sess := s.newEngine(port, radio)
	if sess.Publisher != nil {
		sess.Publisher.SetSession(port, radio.Firmware())
	}
	if img != nil {
		if err := sess.Engine.Load(ctx, img); err != nil {
			sess.Engine.Close()
			return err
		}
	}
	s.closeSession()
	s.Session = sess
	glog.Infof("connected %s: %s", port, radio.Firmware())
	s.setPrompt(fmt.Sprintf("[%s] > ", port))
	return nil
}

// LoadImage starts an offline session with img unless connected, and
// makes img ready for upload.
func (s *Shell) LoadImage(img *layout.Image) error {
	if s.Session == nil {
		s.Session = s.newEngine("", nil)
	}
	return s.Session.Engine.Load(context.Background(), img)
}

// Disconnect closes the radio. A ready image stays available offline.
func (s *Shell) Disconnect() {
	if !s.Session.Connected() {
		return
	}
	var img *layout.Image
	if e := s.Session.Engine; e.State() == clone.Ready {
		img = e.Image()
	}
	s.closeSession()
	if img != nil {
		if err := s.LoadImage(img); err != nil {
			glog.Warningf("keep image: %v", err)
		}
	}
	s.setPrompt(unconnectedPrompt)
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

func (s *Shell) closeSession() {
	if s.Session == nil {
		return
	}
	if err := s.Session.Engine.Close(); err != nil && !errors.Is(err, link.ErrClosed) {
		glog.Warningf("close %s: %v", s.Session.Port, err)
	}
	s.Session = nil
}

func (s *Shell) connectQueue() error {
	if s.queue != nil {
		return nil
	}
	q, err := s.Config.NewQueue()
	if err != nil || q == nil {
		return err
	}
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT: %w", err)
	}
	s.queue = q
	return nil
}

// Transfer runs a download or upload, rendering progress and publishing
// the result. An interrupt aborts the transfer.
func (s *Shell) Transfer(op clone.Op, fn func(context.Context, *clone.Engine) (*clone.Report, error)) (*clone.Report, error) {
	sess := s.Session
	if !sess.Connected() {
		return nil, ErrNotConnected
	}
	ctx, stop := framework.InterruptContext(context.Background())
	defer stop()
	report, err := fn(ctx, sess.Engine)
	if s.progress != nil {
		s.progress.Done()
	}
	if sess.Publisher != nil {
		sess.Publisher.Result(op, report, err)
	}
	return report, err
}

// Close ends the session and the broker connection.
func (s *Shell) Close() {
	s.closeSession()
	if s.queue != nil {
		s.queue.Close()
		s.queue = nil
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(""); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"l"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := link.ListSerial()
			if err != nil {
				c.Err(err)
				return
			}
			if ports == nil {
				ports = []string{}
			}
			s.Output(c, ports, func() {
				if len(ports) == 0 {
					c.Println("No serial ports found")
				}
				for _, port := range ports {
					c.Println(port)
				}
			})
		},
	}

	// ConnectCmd connects a radio.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT|sim[:FILE]|ws://HOST/PATH]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if err := s.Connect(port); err != nil {
				c.Err(err)
				return
			}
			radio := s.Session.Radio
			s.Output(c, map[string]string{"port": s.Session.Port, "firmware": radio.Firmware()}, func() {
				c.Printf("Connected: %s\n", radio.Firmware())
			})
		},
	}

	// DisconnectCmd disconnects the radio.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s, err := New(env.NewConfig())
	if err != nil {
		log.Fatalln(err)
	}
	s.WithAutoConnect(true).Run(flag.Args()...)
}
