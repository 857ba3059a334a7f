package config

// ScoringConfig represents the classifier thresholds
type ScoringConfig struct {
	Critical       int
	Dangerous      int
	LikelyPhishing int
	Suspicious     int
}

// RulesConfig represents the weights and inputs of the detection rules
type RulesConfig struct {
	BuzzwordPoints      int
	Buzzwords           []string
	ShortenerPoints     int
	ImpersonationPoints int
	TyposquatEnabled    bool
	TyposquatPoints     int
}

// PhishConfig represents the phishing policy of the service
type PhishConfig struct {
	BlockLevel         string
	AllowlistedDomains []string
}

// ServerConfig represents the configuration of the Postfix content filter
type ServerConfig struct {
	ListenAddress    string
	BlockPhishing    bool
	StatusHeader     string
	ScoreHeader      string
	LevelHeader      string
	IndicatorsHeader string
	PostfixEnabled   bool
	PostfixAddress   string
	PostfixPort      int
	ModifySubject    bool
	SubjectPrefix    string
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() ScoringConfig {
	return ScoringConfig{
		Critical:       c.GetInt("scoring.thresholds.critical"),
		Dangerous:      c.GetInt("scoring.thresholds.dangerous"),
		LikelyPhishing: c.GetInt("scoring.thresholds.likely_phishing"),
		Suspicious:     c.GetInt("scoring.thresholds.suspicious"),
	}
}

// GetRules returns the rule configuration
func (c *Config) GetRules() RulesConfig {
	return RulesConfig{
		BuzzwordPoints:      c.GetInt("rules.buzzword.points"),
		Buzzwords:           c.GetStringSlice("rules.buzzword.keywords"),
		ShortenerPoints:     c.GetInt("rules.shortener.points"),
		ImpersonationPoints: c.GetInt("rules.impersonation.points"),
		TyposquatEnabled:    c.GetBool("rules.typosquat.enabled"),
		TyposquatPoints:     c.GetInt("rules.typosquat.points"),
	}
}

// GetPhish returns the phishing policy configuration
func (c *Config) GetPhish() PhishConfig {
	return PhishConfig{
		BlockLevel:         c.GetString("phish.block_level"),
		AllowlistedDomains: c.GetStringSlice("phish.allowlisted_domains"),
	}
}

// GetServer returns the content filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:    c.GetString("server.listen_address"),
		BlockPhishing:    c.GetBool("server.block_phishing"),
		StatusHeader:     c.GetString("server.headers.status"),
		ScoreHeader:      c.GetString("server.headers.score"),
		LevelHeader:      c.GetString("server.headers.level"),
		IndicatorsHeader: c.GetString("server.headers.indicators"),
		PostfixEnabled:   c.GetBool("server.postfix.enabled"),
		PostfixAddress:   c.GetString("server.postfix.address"),
		PostfixPort:      c.GetInt("server.postfix.port"),
		ModifySubject:    c.GetBool("server.modify_subject"),
		SubjectPrefix:    c.GetString("server.subject_prefix"),
	}
}
