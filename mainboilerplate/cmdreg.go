package mainboilerplate

import "github.com/jessevdk/go-flags"

// AddCommandFunc adds a sub-command to a parent flags.Command.
type AddCommandFunc func(*flags.Command) error

// CommandRegistry collects sub-commands by the dotted name of their parent,
// so that packages may register commands from init() without a reference
// to the parser which will eventually hold them.
type CommandRegistry map[string][]AddCommandFunc

// NewCommandRegistry returns an empty CommandRegistry.
func NewCommandRegistry() CommandRegistry {
	return make(CommandRegistry)
}

// AddCommand registers a command |name| beneath |parentName|. Nested parents
// are separated by dots: AddCommand("journal", "stat", ...) registers the
// command "journal stat".
func (cr CommandRegistry) AddCommand(parentName, name, short, long string, data interface{}) {
	cr[parentName] = append(cr[parentName], func(cmd *flags.Command) error {
		var _, err = cmd.AddCommand(name, short, long, data)
		return err
	})
}

// AddCommands adds commands registered beneath |rootName| to |rootCmd| and,
// if |recursive|, the registered commands of each of its sub-commands.
func (cr CommandRegistry) AddCommands(rootName string, rootCmd *flags.Command, recursive bool) error {
	for _, fn := range cr[rootName] {
		if err := fn(rootCmd); err != nil {
			return err
		}
	}
	if !recursive {
		return nil
	}
	for _, cmd := range rootCmd.Commands() {
		var name = cmd.Name
		if rootName != "" {
			name = rootName + "." + name
		}
		if err := cr.AddCommands(name, cmd, recursive); err != nil {
			return err
		}
	}
	return nil
}
