package config

// NewConfigFromYaml converts the raw unmarshaled data (YamlConfig) into a
// clean, base AppConfig struct. Environment overrides are applied later by
// the loader.
func NewConfigFromYaml(yamlCfg *YamlConfig) (*AppConfig, error) {
	appCfg := &AppConfig{
		ProjectID:          yamlCfg.ProjectID,
		RunMode:            yamlCfg.RunMode,
		APIPort:            yamlCfg.APIPort,
		WebSocketPort:      yamlCfg.WebSocketPort,
		IdentityServiceURL: yamlCfg.IdentityServiceURL,
		Cors:               yamlCfg.Cors,
		Firestore:          yamlCfg.Firestore,
	}

	return appCfg, nil
}
