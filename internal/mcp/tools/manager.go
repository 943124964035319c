package tools

import (
	"mcp-databases/internal/config"
	"mcp-databases/internal/database"
	"mcp-databases/internal/logging"
	"mcp-databases/internal/pipeline"
	"mcp-databases/internal/security"
	"mcp-databases/internal/sqlbuilder"
)

// Manager owns the validation pipeline and the driver collaborator, and
// registers every database tool. The security inspection tools carry no
// database dependency and register even when the connection is down.
type Manager struct {
	cfg    *config.Config
	exec   database.Executor
	sec    *security.Config
	pipe   *pipeline.Pipeline
	logger *logging.Logger
}

// NewManager creates a tool manager. exec may be nil when the database is
// unavailable; only the offline security tools are registered then.
func NewManager(cfg *config.Config, exec database.Executor, sec *security.Config, dialect sqlbuilder.Dialect) *Manager {
	limits := pipeline.Limits{
		UpdateDefault: cfg.Security.UpdateDefaultLimit,
		DeleteDefault: cfg.Security.DeleteDefaultLimit,
	}
	var counter pipeline.Counter
	if exec != nil {
		counter = exec
	}
	return &Manager{
		cfg:    cfg,
		exec:   exec,
		sec:    sec,
		pipe:   pipeline.New(sec, counter, dialect, limits),
		logger: logging.New("ToolManager"),
	}
}

// Pipeline exposes the validation pipeline for the offline CLI path.
func (m *Manager) Pipeline() *pipeline.Pipeline {
	return m.pipe
}

// RegisterAll registers every available tool with the registrar.
func (m *Manager) RegisterAll(registrar ToolRegistrar) {
	m.logger.Info("registering security tools...")
	registrar.RegisterTool(*m.newSecurityCheckTool())
	registrar.RegisterTool(*m.newSecurityConfigTool())
	registrar.RegisterTool(*m.newSafeQueryTool())

	if m.exec == nil {
		m.logger.Warn("database not available, skipping database tools registration")
		return
	}

	m.logger.Info("registering database tools...")
	registrar.RegisterTool(*m.newCreateTableTool())
	registrar.RegisterTool(*m.newAlterTableTool())
	registrar.RegisterTool(*m.newInsertRecordTool())
	registrar.RegisterTool(*m.newBulkInsertTool())
	registrar.RegisterTool(*m.newUpdateRecordsTool())
	registrar.RegisterTool(*m.newExecuteQueryTool())
	registrar.RegisterTool(*m.newListTablesTool())
	registrar.RegisterTool(*m.newExposeSchemaTool())

	if m.cfg.DestructiveAllowed() {
		registrar.RegisterTool(*m.newDropTableTool())
		registrar.RegisterTool(*m.newDeleteRecordsTool())
	} else {
		m.logger.Warn("destructive tools disabled by configuration")
	}
	m.logger.Info("database tools registered")
}

// Close releases the driver collaborator.
func (m *Manager) Close() error {
	if m.exec != nil {
		return m.exec.Close()
	}
	return nil
}
