package startup

import (
	"strings"

	"github.com/spf13/pflag"
)

// Recognised flag names.
const (
	FlagHelp             = "help"
	FlagRegisterURL      = "register-url"
	FlagInstallService   = "install-service"
	FlagUninstallService = "uninstall-service"
	FlagNoBrowser        = "nobrowser"
	FlagData             = "data"
)

// Context is the parsed, read-only view of the process arguments.
type Context struct {
	help             bool
	registerURL      bool
	installService   bool
	uninstallService bool
	noBrowser        bool
	dataDir          string
	args             map[string]string
	passthrough      []string
}

func (c *Context) Help() bool             { return c.help }
func (c *Context) RegisterURL() bool      { return c.registerURL }
func (c *Context) InstallService() bool   { return c.installService }
func (c *Context) UninstallService() bool { return c.uninstallService }
func (c *Context) NoBrowser() bool        { return c.noBrowser }

// DataDir returns the --data override, or "".
func (c *Context) DataDir() string { return c.dataDir }

// Arg returns a recognised --key=value argument.
func (c *Context) Arg(key string) (string, bool) {
	v, ok := c.args[key]
	return v, ok
}

// Args returns a copy of the recognised --key=value arguments.
func (c *Context) Args() map[string]string {
	out := make(map[string]string, len(c.args))
	for k, v := range c.args {
		out[k] = v
	}
	return out
}

// Passthrough returns the arguments the parser did not recognise, in order.
func (c *Context) Passthrough() []string {
	return append([]string(nil), c.passthrough...)
}

// Parse builds a Context from process arguments (without the program name).
// Unknown flags and positional arguments are kept as passthrough. A leading
// "/" is accepted in place of "--" for recognised names, and "-?" and "/?"
// mean help.
func Parse(args []string) (*Context, error) {
	fs := newFlagSet()

	known, passthrough := split(fs, args)
	if err := fs.Parse(known); err != nil {
		return nil, err
	}

	c := &Context{args: make(map[string]string), passthrough: passthrough}
	c.help, _ = fs.GetBool(FlagHelp)
	c.registerURL, _ = fs.GetBool(FlagRegisterURL)
	c.installService, _ = fs.GetBool(FlagInstallService)
	c.uninstallService, _ = fs.GetBool(FlagUninstallService)
	c.noBrowser, _ = fs.GetBool(FlagNoBrowser)
	c.dataDir, _ = fs.GetString(FlagData)

	fs.Visit(func(f *pflag.Flag) {
		c.args[f.Name] = f.Value.String()
	})
	return c, nil
}

// MustParse is Parse for tests and fixed argument lists.
func MustParse(args ...string) *Context {
	c, err := Parse(args)
	if err != nil {
		panic(err)
	}
	return c
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("apphost", pflag.ContinueOnError)
	fs.SetInterspersed(true)
	fs.Usage = func() {}
	fs.BoolP(FlagHelp, "h", false, "show usage")
	fs.Bool(FlagRegisterURL, false, "reserve the listen URL with the OS (windows)")
	fs.BoolP(FlagInstallService, "i", false, "install and start the service (windows)")
	fs.BoolP(FlagUninstallService, "u", false, "stop and remove the service (windows)")
	fs.Bool(FlagNoBrowser, false, "do not open a browser on start")
	fs.String(FlagData, "", "application data directory")
	return fs
}

// split separates arguments pflag understands from passthrough arguments.
func split(fs *pflag.FlagSet, args []string) (known, passthrough []string) {
	for i := 0; i < len(args); i++ {
		arg := normalize(fs, args[i])
		name, hasValue := flagName(arg)
		f := lookup(fs, arg, name)
		if f == nil {
			passthrough = append(passthrough, args[i])
			continue
		}
		known = append(known, arg)
		// a string flag given as "--data dir" consumes the next argument
		if !hasValue && f.Value.Type() != "bool" && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, passthrough
}

func normalize(fs *pflag.FlagSet, arg string) string {
	switch arg {
	case "-?", "/?", "--?":
		return "--" + FlagHelp
	}
	if strings.HasPrefix(arg, "/") && len(arg) > 1 {
		name, _ := flagName("--" + arg[1:])
		if fs.Lookup(strings.ToLower(name)) != nil {
			return "--" + strings.ToLower(name) + arg[1+len(name):]
		}
	}
	return arg
}

func flagName(arg string) (string, bool) {
	name := strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true
	}
	return name, false
}

func lookup(fs *pflag.FlagSet, arg, name string) *pflag.Flag {
	switch {
	case strings.HasPrefix(arg, "--"):
		return fs.Lookup(name)
	case strings.HasPrefix(arg, "-") && len(name) == 1:
		return fs.ShorthandLookup(name)
	}
	return nil
}

// Usage renders the recognised flags for the help route.
func Usage() string {
	return newFlagSet().FlagUsages()
}
