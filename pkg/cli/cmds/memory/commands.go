// Package memory provides the commands viewing and editing the image.
package memory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uvk5.go/pkg/cli/sh"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
)

func init() {
	sh.AddCmds(
		&ChannelsCmd,
		&ChannelCmd,
		&SetChannelCmd,
		&EraseCmd,
		&SettingsCmd,
		&SetCmd,
		&ContactsCmd,
		&SetContactCmd,
		&FeaturesCmd,
		&ScanListsCmd,
		&FMCmd,
		&DTMFCmd,
		&CalibrationCmd,
	)
}

// modelCmd wraps a command reading the image.
func modelCmd(fn func(c *ishell.Context, s *sh.Shell, m *model.Model) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := sh.ShellFrom(c)
		m, err := s.Model()
		if err == nil {
			err = fn(c, s, m)
		}
		if err != nil {
			printErr(c, err)
		}
	}
}

func printErr(c *ishell.Context, err error) {
	if errs := model.ValidationErrors(err); len(errs) > 1 {
		for _, e := range errs {
			c.Println(e.Error())
		}
		c.Err(fmt.Errorf("%d problems", len(errs)))
		return
	}
	c.Err(err)
}

func printChannels(c *ishell.Context, chs []*model.Channel) {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CH\tNAME\tFREQ\tOFFSET\tRX\tTX\tMODE\tPOWER\tSTEP\tSCAN")
	for _, ch := range chs {
		v := viewChannel(ch)
		mode := v.Mode
		if v.Narrow {
			mode += "N"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Number, v.Name, v.Freq, v.Offset, v.RxTone, v.TxTone, mode, v.Power, v.Step, v.ScanLists)
	}
	w.Flush()
	c.Print(b.String())
}

var (
	// ChannelsCmd lists the channels in use.
	ChannelsCmd = ishell.Cmd{
		Name:    "channels",
		Aliases: []string{"chs"},
		Help:    "[all]",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			var chs []*model.Channel
			var err error
			if len(c.Args) > 0 && c.Args[0] == "all" {
				chs, err = m.Channels()
			} else {
				chs, err = m.ActiveChannels()
			}
			if err != nil {
				return err
			}
			views := make([]channelView, 0, len(chs))
			for _, ch := range chs {
				views = append(views, viewChannel(ch))
			}
			s.Output(c, views, func() { printChannels(c, chs) })
			return nil
		}),
	}

	// ChannelCmd shows one channel.
	ChannelCmd = ishell.Cmd{
		Name:    "channel",
		Aliases: []string{"ch"},
		Help:    "N|VFOn",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			if len(c.Args) != 1 {
				return errors.New("channel expected")
			}
			slot, err := parseSlot(c.Args[0])
			if err != nil {
				return err
			}
			ch, err := m.Channel(slot)
			if err != nil {
				return err
			}
			s.Output(c, viewChannel(ch), func() {
				printChannels(c, []*model.Channel{ch})
				if !ch.IsVFO() && ch.Free {
					c.Println("(free)")
				}
			})
			return nil
		}),
	}

	// SetChannelCmd programs a channel.
	SetChannelCmd = ishell.Cmd{
		Name:    "set-channel",
		Aliases: []string{"sc"},
		Help:    "N|VFOn FREQ [name=] [offset=±MHz] [rx=|tx=|tone=] [mode=] [power=] [step=kHz] [narrow] [scan1] [scan2] ...",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(errors.New("channel and frequency expected"))
				return
			}
			slot, err := parseSlot(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			freq, err := model.ParseFrequency(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			err = sh.ShellFrom(c).Edit(func(m *model.Model) error {
				ch, err := m.Channel(slot)
				if err != nil {
					return err
				}
				if !ch.IsVFO() && ch.Free || ch.Blank() {
					ch = newChannel(slot)
				}
				ch.Freq = freq
				if err := applyChannelArgs(ch, c.Args[2:]); err != nil {
					return err
				}
				return m.SetChannel(ch)
			})
			if err != nil {
				printErr(c, err)
			}
		},
	}

	// EraseCmd erases channels.
	EraseCmd = ishell.Cmd{
		Name:    "erase",
		Aliases: []string{"rm"},
		Help:    "N...",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("channel expected"))
				return
			}
			slots := make([]int, 0, len(c.Args))
			for _, arg := range c.Args {
				slot, err := parseSlot(arg)
				if err != nil {
					c.Err(err)
					return
				}
				slots = append(slots, slot)
			}
			err := sh.ShellFrom(c).Edit(func(m *model.Model) error {
				for _, slot := range slots {
					if err := m.EraseChannel(slot); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				printErr(c, err)
			}
		},
	}

	// SettingsCmd lists the global settings.
	SettingsCmd = ishell.Cmd{
		Name: "settings",
		Help: "",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			values, err := m.Settings()
			if err != nil {
				return err
			}
			out := make(map[string]uint32, len(values))
			for _, v := range values {
				if v.Supported {
					out[v.Name] = v.Value
				}
			}
			s.Output(c, out, func() {
				var b strings.Builder
				w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
				for _, v := range values {
					note := ""
					if !v.Supported {
						note = "(unsupported)"
					}
					fmt.Fprintf(w, "%s\t%d\t0-%d\t%s\n", v.Name, v.Value, v.Max, note)
				}
				w.Flush()
				c.Print(b.String())
			})
			return nil
		}),
	}

	// SetCmd changes a global setting.
	SetCmd = ishell.Cmd{
		Name: "set",
		Help: "NAME VALUE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errors.New("name and value expected"))
				return
			}
			v, err := strconv.ParseUint(c.Args[1], 0, 32)
			if err != nil {
				c.Err(fmt.Errorf("invalid value %q", c.Args[1]))
				return
			}
			err = sh.ShellFrom(c).Edit(func(m *model.Model) error {
				return m.SetSetting(c.Args[0], uint32(v))
			})
			if err != nil {
				printErr(c, err)
			}
		},
	}

	// ContactsCmd lists the DTMF contacts.
	ContactsCmd = ishell.Cmd{
		Name: "contacts",
		Help: "",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			contacts, err := m.Contacts()
			if err != nil {
				return err
			}
			s.Output(c, contacts, func() {
				for n, ct := range contacts {
					if !ct.Empty() {
						c.Printf("%2d %-8s %s\n", n+1, ct.Name, ct.Number)
					}
				}
			})
			return nil
		}),
	}

	// SetContactCmd stores or clears a DTMF contact.
	SetContactCmd = ishell.Cmd{
		Name: "set-contact",
		Help: "N [NAME NUMBER]",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 && len(c.Args) != 3 {
				c.Err(errors.New("contact number, optionally name and number expected"))
				return
			}
			n, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("invalid contact %q", c.Args[0]))
				return
			}
			var ct model.Contact
			if len(c.Args) == 3 {
				ct = model.Contact{Name: c.Args[1], Number: c.Args[2]}
			}
			err = sh.ShellFrom(c).Edit(func(m *model.Model) error {
				return m.SetContact(n-1, ct)
			})
			if err != nil {
				printErr(c, err)
			}
		},
	}

	// FeaturesCmd lists the firmware build options.
	FeaturesCmd = ishell.Cmd{
		Name: "features",
		Help: "",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			names := m.Features().Names()
			if names == nil {
				names = []string{}
			}
			s.Output(c, names, func() {
				for _, name := range names {
					c.Println(name)
				}
			})
			return nil
		}),
	}

	// ScanListsCmd shows the scan list options.
	ScanListsCmd = ishell.Cmd{
		Name: "scanlists",
		Help: "",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			lists, err := m.ScanLists()
			if err != nil {
				return err
			}
			s.Output(c, lists, func() {
				c.Printf("default: %d\n", lists.Default)
				for n, l := range lists.Lists {
					c.Printf("list %d: priority %v ch1 %s ch2 %s\n",
						n+1, l.Priority, priorityChannel(l.Ch1), priorityChannel(l.Ch2))
				}
			})
			return nil
		}),
	}

	// FMCmd shows or sets the broadcast FM presets.
	FMCmd = ishell.Cmd{
		Name: "fm",
		Help: "[N MHZ]",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if len(c.Args) == 2 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("invalid preset %q", c.Args[0]))
					return
				}
				f, err := model.ParseFrequency(c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				if err := s.Edit(func(m *model.Model) error { return m.SetFMPreset(n-1, f) }); err != nil {
					printErr(c, err)
				}
				return
			}
			modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
				presets, err := m.FMPresets()
				if err != nil {
					return err
				}
				s.Output(c, presets, func() {
					for n, f := range presets {
						if f != 0 {
							c.Printf("%2d %s\n", n+1, f)
						}
					}
				})
				return nil
			})(c)
		},
	}

	// DTMFCmd shows the DTMF settings.
	DTMFCmd = ishell.Cmd{
		Name: "dtmf",
		Help: "",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			d, err := m.DTMF()
			if err != nil {
				return err
			}
			s.Output(c, d, func() { c.Printf("%+v\n", *d) })
			return nil
		}),
	}

	// CalibrationCmd shows the calibration table.
	CalibrationCmd = ishell.Cmd{
		Name:    "calibration",
		Aliases: []string{"cal"},
		Help:    "",
		Func: modelCmd(func(c *ishell.Context, s *sh.Shell, m *model.Model) error {
			cal, err := m.Calibration()
			if err != nil {
				return err
			}
			s.Output(c, cal, func() { c.Printf("%+v\n", *cal) })
			return nil
		}),
	}
)

func priorityChannel(ch int) string {
	if ch == model.NoChannel {
		return "-"
	}
	return strconv.Itoa(ch + 1)
}
