package console

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Catalog keys. The key doubles as the English text.
const (
	msgTitle           = "Workshop Management System"
	msgLoading         = "Starting the Workshop Management System..."
	msgOnline          = "[INFO] Internet connection detected. The system will work normally."
	msgOffline         = "[WARNING] You are offline! The system will work in local mode."
	msgOfflineAdvice   = "Changes will be saved locally and synchronized when the internet connection is restored."
	msgRestored        = "[INFO] Internet connection restored! Synchronizing data..."
	msgLost            = "[WARNING] Internet connection lost! Switching to offline mode..."
	msgServerStarted   = "Server started at %s"
	msgServerFailed    = "Error starting HTTP server: %v"
	msgServerDegraded  = "Opening %s in case another instance is already serving it."
	msgServerExited    = "The server stopped unexpectedly: %v"
	msgShuttingDown    = "Shutting down the Workshop Management System..."
	msgRuntimeMissing  = "%s was not found! Install it from %s and run the system again."
	msgInstalling      = "Installing dependencies, this may take a few minutes..."
	msgInstallFailed   = "Dependency installation failed: %v"
	msgAlreadyRunning  = "The system is already running in another window."
	msgPackageCreated  = "Executable '%s' created successfully!"
	msgPackageLocation = "You can find it in the '%s' folder."
	msgStatusHeader    = "Environment"
	msgHistorySessions = "Recent sessions"
	msgHistoryChanges  = "Connectivity changes"
	msgHistoryEmpty    = "No history recorded yet."
	msgOnlineLabel     = "online"
	msgOfflineLabel    = "offline"

	colStarted  = "Started"
	colDuration = "Duration"
	colMode     = "Mode"
	colURL      = "URL"
	colOnline   = "Online at start"
	colOutcome  = "Outcome"
	colSession  = "Session"
	colAt       = "At"
	colState    = "State"
)

var supportedLanguages = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

var ptBR = map[string]string{
	msgTitle:           "Sistema de Gestão de Oficina",
	msgLoading:         "Iniciando o Sistema de Gestão de Oficina...",
	msgOnline:          "[INFO] Conexão com a internet detectada. O sistema funcionará normalmente.",
	msgOffline:         "[AVISO] Você está offline! O sistema funcionará em modo local.",
	msgOfflineAdvice:   "As alterações serão salvas localmente e sincronizadas quando a internet for restabelecida.",
	msgRestored:        "[INFO] Conexão com a internet restabelecida! Sincronizando dados...",
	msgLost:            "[AVISO] Conexão com a internet perdida! Mudando para modo offline...",
	msgServerStarted:   "Servidor iniciado em %s",
	msgServerFailed:    "Erro ao iniciar servidor HTTP: %v",
	msgServerDegraded:  "Abrindo %s caso outra instância já esteja servindo o sistema.",
	msgServerExited:    "O servidor parou inesperadamente: %v",
	msgShuttingDown:    "Encerrando o Sistema de Gestão de Oficina...",
	msgRuntimeMissing:  "%s não foi encontrado! Instale a partir de %s e execute o sistema novamente.",
	msgInstalling:      "Instalando dependências, isso pode levar alguns minutos...",
	msgInstallFailed:   "Falha ao instalar dependências: %v",
	msgAlreadyRunning:  "O sistema já está em execução em outra janela.",
	msgPackageCreated:  "Executável '%s' criado com sucesso!",
	msgPackageLocation: "Você pode encontrá-lo na pasta '%s'.",
	msgStatusHeader:    "Ambiente",
	msgHistorySessions: "Sessões recentes",
	msgHistoryChanges:  "Mudanças de conectividade",
	msgHistoryEmpty:    "Nenhum histórico registrado ainda.",
	msgOnlineLabel:     "online",
	msgOfflineLabel:    "offline",

	colStarted:  "Início",
	colDuration: "Duração",
	colMode:     "Modo",
	colURL:      "URL",
	colOnline:   "Online no início",
	colOutcome:  "Resultado",
	colSession:  "Sessão",
	colAt:       "Quando",
	colState:    "Estado",
}

func init() {
	for key, text := range ptBR {
		_ = message.SetString(language.BrazilianPortuguese, key, text)
		_ = message.SetString(language.English, key, key)
	}
}

// ResolveLanguage maps a configured language name to a supported tag,
// defaulting to Brazilian Portuguese.
func ResolveLanguage(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return language.BrazilianPortuguese
	}
	_, index, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return language.BrazilianPortuguese
	}
	return supportedLanguages[index]
}
