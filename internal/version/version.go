package version

import "fmt"

// Заполняется через -ldflags при сборке релиза.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// BuildInfo описывает версию собранного бинаря.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// Get возвращает информацию о сборке.
func Get() BuildInfo {
	return BuildInfo{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
	}
}

// GetVersion возвращает короткую строку версии для health-эндпоинта.
func GetVersion() string {
	return version
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.GitCommit, b.BuildDate)
}
