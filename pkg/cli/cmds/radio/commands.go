// Package radio provides the connection and transfer commands.
package radio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uvk5.go/pkg/cli/sh"
	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/uvk5"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
)

func init() {
	sh.AddCmds(
		&VersionCmd,
		&DownloadCmd,
		&UploadCmd,
		&LoadCmd,
		&SaveCmd,
		&ValidateCmd,
		&BandsCmd,
	)
}

// reportView is the JSON form of a clone.Report.
type reportView struct {
	Op        clone.Op    `json:"op"`
	Blocks    int         `json:"blocks"`
	Bytes     int         `json:"bytes"`
	Retries   map[int]int `json:"retries,omitempty"`
	ElapsedMs int64       `json:"elapsed_ms"`
}

func printReport(c *ishell.Context, report *clone.Report) {
	view := reportView{
		Op:        report.Op,
		Blocks:    report.Blocks,
		Bytes:     report.Bytes,
		Retries:   report.Retries,
		ElapsedMs: int64(report.Elapsed / time.Millisecond),
	}
	sh.ShellFrom(c).Output(c, view, func() {
		c.Printf("%s: %d blocks, %d bytes, %d retries in %s\n",
			report.Op, report.Blocks, report.Bytes, report.TotalRetries(),
			report.Elapsed.Round(time.Millisecond))
	})
}

// printErr prints every validation problem on its own line.
func printErr(c *ishell.Context, err error) {
	if errs := model.ValidationErrors(err); len(errs) > 0 {
		for _, e := range errs {
			c.Println(e.Error())
		}
		c.Err(fmt.Errorf("%d problems", len(errs)))
		return
	}
	c.Err(err)
}

var (
	// VersionCmd shows the firmware version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"ver"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			radio := s.Session.Radio
			if err := radio.Hello(context.Background()); err != nil {
				c.Err(err)
				return
			}
			s.Output(c, map[string]string{"firmware": radio.Firmware()}, func() {
				c.Println(radio.Firmware())
			})
		}),
	}

	// DownloadCmd reads the memory of the radio.
	DownloadCmd = ishell.Cmd{
		Name:    "download",
		Aliases: []string{"dl"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			report, err := sh.ShellFrom(c).Transfer(clone.OpDownload, func(ctx context.Context, e *clone.Engine) (*clone.Report, error) {
				return e.Download(ctx)
			})
			if err != nil {
				c.Err(err)
				return
			}
			printReport(c, report)
		}),
	}

	// UploadCmd writes the image to the radio.
	UploadCmd = ishell.Cmd{
		Name:    "upload",
		Aliases: []string{"ul"},
		Help:    "[--calibration]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var calibration bool
			for _, arg := range c.Args {
				switch arg {
				case "--calibration", "-c":
					calibration = true
				default:
					c.Err(fmt.Errorf("unknown option %q", arg))
					return
				}
			}
			report, err := sh.ShellFrom(c).Transfer(clone.OpUpload, func(ctx context.Context, e *clone.Engine) (*clone.Report, error) {
				return e.UploadRegions(ctx, uvk5.UVK5.UploadRegions(calibration)...)
			})
			if err != nil {
				printErr(c, err)
				return
			}
			printReport(c, report)
		}),
	}

	// LoadCmd loads an image file.
	LoadCmd = ishell.Cmd{
		Name: "load",
		Help: "FILE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("image file expected"))
				return
			}
			f, err := os.Open(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			defer f.Close()
			img, err := layout.ReadImage(f, uvk5.MemSize)
			if err != nil {
				c.Err(fmt.Errorf("%s: %w", c.Args[0], err))
				return
			}
			if err := sh.ShellFrom(c).LoadImage(img); err != nil {
				c.Err(err)
			}
		},
	}

	// SaveCmd saves the image to a file.
	SaveCmd = ishell.Cmd{
		Name: "save",
		Help: "FILE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("image file expected"))
				return
			}
			e := sh.ShellFrom(c).Engine()
			if e == nil || e.State() != clone.Ready {
				c.Err(sh.ErrNoImage)
				return
			}
			f, err := os.Create(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if _, err = e.Image().WriteTo(f); err == nil {
				err = f.Close()
			} else {
				f.Close()
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// ValidateCmd checks the image without uploading.
	ValidateCmd = ishell.Cmd{
		Name:    "validate",
		Aliases: []string{"check"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			m, err := s.Model()
			if err != nil {
				c.Err(err)
				return
			}
			errs := model.ValidationErrors(m.Validate())
			problems := make([]string, 0, len(errs))
			for _, e := range errs {
				problems = append(problems, e.Error())
			}
			s.Output(c, problems, func() {
				if len(problems) == 0 {
					c.Println("OK")
				}
				for _, p := range problems {
					c.Println(p)
				}
			})
		},
	}

	// BandsCmd shows the band plan.
	BandsCmd = ishell.Cmd{
		Name: "bands",
		Help: "",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			s.Output(c, s.Bands, func() {
				for n, b := range s.Bands {
					c.Printf("%d %s\n", n, b)
				}
			})
		},
	}
)
