package cli

import "github.com/spf13/pflag"

// stringSetting resolves a string option: an explicitly set flag wins over the
// configured value, which wins over the flag default.
func stringSetting(flags *pflag.FlagSet, name string, flagValue string, configured string) string {
	if flagChanged(flags, name) || configured == "" {
		return flagValue
	}
	return configured
}

func intSetting(flags *pflag.FlagSet, name string, flagValue int, configured *int) int {
	if flagChanged(flags, name) || configured == nil {
		return flagValue
	}
	return *configured
}

func boolSetting(flags *pflag.FlagSet, name string, flagValue bool, configured *bool) bool {
	if flagChanged(flags, name) || configured == nil {
		return flagValue
	}
	return *configured
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	flag := flags.Lookup(name)
	return flag != nil && flag.Changed
}
