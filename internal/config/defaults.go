package config

const (
	defaultConfigPath           = "~/.config/oficina/config.toml"
	defaultStateDir             = "~/.local/share/oficina"
	defaultLogDir               = "~/.local/share/oficina/logs"
	defaultServerMode           = ModeDev
	defaultServerHost           = "localhost"
	defaultServerPort           = 8080
	defaultBuildDir             = "dist"
	defaultStopTimeoutSeconds   = 10
	defaultRuntimeCheck         = "node --version"
	defaultRuntimeName          = "Node.js"
	defaultRuntimeHint          = "https://nodejs.org/"
	defaultMarkerDir            = "node_modules"
	defaultInstallCommand       = "npm install --no-audit --no-fund"
	defaultDevCommand           = "npx vite"
	defaultDevURL               = "http://localhost:5173/"
	defaultURLTimeoutSeconds    = 30
	defaultConnectivityTarget   = "8.8.8.8:53"
	defaultProbeTimeoutSeconds  = 3
	defaultProbeIntervalSeconds = 10
	defaultBrowserDelaySeconds  = 2
	defaultPackagerCommand      = "pyinstaller"
	defaultPackagerEntry        = "start_sistema.py"
	defaultPackagerName         = "sistema_oficina"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultLanguage             = "pt-BR"
)

// Server modes.
const (
	ModeDev    = "dev"
	ModeStatic = "static"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Mode:               defaultServerMode,
			Host:               defaultServerHost,
			Port:               defaultServerPort,
			BuildDir:           defaultBuildDir,
			StopTimeoutSeconds: defaultStopTimeoutSeconds,
		},
		Dev: Dev{
			RuntimeCheck:      defaultRuntimeCheck,
			RuntimeName:       defaultRuntimeName,
			RuntimeHint:       defaultRuntimeHint,
			MarkerDir:         defaultMarkerDir,
			InstallCommand:    defaultInstallCommand,
			Command:           defaultDevCommand,
			DefaultURL:        defaultDevURL,
			URLTimeoutSeconds: defaultURLTimeoutSeconds,
		},
		Connectivity: Connectivity{
			Target:          defaultConnectivityTarget,
			TimeoutSeconds:  defaultProbeTimeoutSeconds,
			IntervalSeconds: defaultProbeIntervalSeconds,
		},
		Browser: Browser{
			Enabled:      true,
			DelaySeconds: defaultBrowserDelaySeconds,
		},
		Status: Status{
			Enabled: true,
		},
		Packager: Packager{
			Command: defaultPackagerCommand,
			Entry:   defaultPackagerEntry,
			Name:    defaultPackagerName,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		UI: UI{
			Language:    defaultLanguage,
			ClearScreen: true,
		},
	}
}
