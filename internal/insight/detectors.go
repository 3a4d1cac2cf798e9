package insight

import (
	"fmt"
	"math"
	"strconv"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// defaultDetectors returns the built-in rule families in emission order.
// Order matters only for rank ties, where earlier families win.
func defaultDetectors() []detector {
	return []detector{
		{
			id: "rf-quality", group: telemetry.GroupNetworkHealth,
			scope: telemetry.ScopeNetwork, confidence: 0.9, recurrence: 0.6,
			detect: detectRFQuality,
		},
		{
			id: "channel-utilization", group: telemetry.GroupCapacityPlanning,
			scope: telemetry.ScopeNetwork, confidence: 0.85, recurrence: 0.5,
			detect: detectChannelUtilization,
		},
		{
			id: "interference", group: telemetry.GroupNetworkHealth,
			scope: telemetry.ScopeSite, confidence: 0.7, recurrence: 0.5,
			detect: detectInterference,
		},
		{
			id: "retry-rate", group: telemetry.GroupNetworkHealth,
			scope: telemetry.ScopeNetwork, confidence: 0.8, recurrence: 0.5,
			detect: detectRetryRate,
		},
		{
			id: "ap-connectivity", group: telemetry.GroupNetworkHealth,
			scope: telemetry.ScopeSite, confidence: 0.95, recurrence: 0.7,
			detect: detectAPConnectivity,
		},
		{
			id: "client-density", group: telemetry.GroupCapacityPlanning,
			scope: telemetry.ScopeSite, confidence: 0.8, recurrence: 0.4,
			detect: detectClientDensity,
		},
		{
			id: "signal-quality", group: telemetry.GroupNetworkHealth,
			scope: telemetry.ScopeClient, confidence: 0.65, recurrence: 0.4,
			detect: detectSignalQuality,
		},
		{
			id: "rfqi-trend-1h", group: telemetry.GroupAnomalyDetection,
			scope: telemetry.ScopeNetwork, confidence: 0.75, recurrence: 0.3,
			detect: detectTrend1h,
		},
		{
			id: "rfqi-comparison-24h", group: telemetry.GroupAnomalyDetection,
			scope: telemetry.ScopeNetwork, confidence: 0.7, recurrence: 0.3,
			detect: detectComparison24h,
		},
		{
			id: "client-surge", group: telemetry.GroupCapacityPlanning,
			scope: telemetry.ScopeSite, confidence: 0.85, recurrence: 0.3,
			detect: detectClientSurge,
		},
		{
			id: "ap-restart-pattern", group: telemetry.GroupPredictiveMaintenance,
			scope: telemetry.ScopeAP, confidence: 0.9, recurrence: 0.6,
			detect: detectAPRestarts,
		},
		{
			id: "ap-resource-stress", group: telemetry.GroupPredictiveMaintenance,
			scope: telemetry.ScopeAP, confidence: 0.85, recurrence: 0.5,
			detect: detectAPResources,
		},
		{
			id: "capacity-forecast", group: telemetry.GroupCapacityPlanning,
			scope: telemetry.ScopeNetwork, confidence: 0.6, recurrence: 0.4,
			detect: detectCapacityForecast,
		},
	}
}

func ev(label, value, unit string) telemetry.InsightEvidence {
	return telemetry.InsightEvidence{Label: label, Value: value, Unit: unit}
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func detectRFQuality(c evalContext) *telemetry.InsightCard {
	if c.snap.RFQI == nil {
		return nil
	}
	rfqi := *c.snap.RFQI
	if rfqi >= c.thresholds.RFQIPoor {
		return nil
	}

	severity := telemetry.SeverityWarning
	if rfqi < c.thresholds.RFQIPoor*c.cfg.RFQICriticalRatio {
		severity = telemetry.SeverityCritical
	}
	return &telemetry.InsightCard{
		Title:       "RF quality below acceptable range",
		Explanation: fmt.Sprintf("The network's RF Quality Index is %s, below this environment's poor-quality mark of %s. Clients will see slow or unstable connections.", f1(rfqi), f1(c.thresholds.RFQIPoor)),
		Evidence: []telemetry.InsightEvidence{
			ev("RF Quality Index", f1(rfqi), ""),
			ev("Poor-quality threshold", f1(c.thresholds.RFQIPoor), ""),
		},
		Recommendation: "Review channel assignments and transmit power; check for new sources of interference near the affected radios.",
		Severity:       severity,
		Impact:         clamp01(1 - rfqi/100),
	}
}

func detectChannelUtilization(c evalContext) *telemetry.InsightCard {
	if c.snap.ChannelUtilizationPct == nil {
		return nil
	}
	util := *c.snap.ChannelUtilizationPct
	ceiling := c.thresholds.ChannelUtilizationPct
	if util <= ceiling || ceiling >= 100 {
		return nil
	}
	return &telemetry.InsightCard{
		Title:       "Channel utilization above ceiling",
		Explanation: fmt.Sprintf("Airtime utilization is %s%%, past the %s%% ceiling for this environment. Contention will increase latency for all clients on the channel.", f1(util), f1(ceiling)),
		Evidence: []telemetry.InsightEvidence{
			ev("Channel utilization", f1(util), "%"),
			ev("Utilization ceiling", f1(ceiling), "%"),
		},
		Recommendation: "Enable band steering toward 5/6 GHz and consider narrower channel widths to reduce co-channel contention.",
		Severity:       telemetry.SeverityWarning,
		Impact:         clamp01((util - ceiling) / (100 - ceiling)),
	}
}

func detectInterference(c evalContext) *telemetry.InsightCard {
	if c.snap.Interference == nil {
		return nil
	}
	intf := *c.snap.Interference
	cutoff := c.thresholds.InterferenceHigh
	if intf <= cutoff || cutoff >= 1 {
		return nil
	}
	return &telemetry.InsightCard{
		Title:       "High RF interference detected",
		Explanation: fmt.Sprintf("Measured interference is %.2f on a 0-1 scale, above the %.2f cutoff. Non-WiFi emitters or overlapping neighbors are degrading airtime.", intf, cutoff),
		Evidence: []telemetry.InsightEvidence{
			ev("Interference", fmt.Sprintf("%.2f", intf), ""),
			ev("High-interference cutoff", fmt.Sprintf("%.2f", cutoff), ""),
		},
		Recommendation: "Run a spectrum scan on the affected band and move radios away from the congested channels.",
		Severity:       telemetry.SeverityWarning,
		Impact:         clamp01((intf - cutoff) / (1 - cutoff)),
	}
}

func detectRetryRate(c evalContext) *telemetry.InsightCard {
	if c.snap.RetryRatePct == nil {
		return nil
	}
	retry := *c.snap.RetryRatePct
	ceiling := c.thresholds.RetryRatePct
	if retry <= ceiling || ceiling >= 100 {
		return nil
	}
	return &telemetry.InsightCard{
		Title:       "Elevated frame retry rate",
		Explanation: fmt.Sprintf("%s%% of wireless frames require retransmission, above the %s%% ceiling. Effective throughput is reduced for every client.", f1(retry), f1(ceiling)),
		Evidence: []telemetry.InsightEvidence{
			ev("Retry rate", f1(retry), "%"),
			ev("Retry-rate ceiling", f1(ceiling), "%"),
		},
		Recommendation: "Check for weak-signal clients holding low data rates and for hidden-node topologies between APs.",
		Severity:       telemetry.SeverityWarning,
		Impact:         clamp01((retry - ceiling) / (100 - ceiling)),
	}
}

func detectAPConnectivity(c evalContext) *telemetry.InsightCard {
	if c.snap.APCount == nil || c.snap.APOnlineCount == nil {
		return nil
	}
	total := *c.snap.APCount
	online := *c.snap.APOnlineCount
	if total <= 0 {
		return nil
	}
	offline := total - online
	offlinePct := float64(offline) / float64(total) * 100
	if offline <= 0 || offlinePct <= c.cfg.OfflineWarnPct {
		return nil
	}

	severity := telemetry.SeverityWarning
	if offlinePct > c.cfg.OfflineCriticalPct {
		severity = telemetry.SeverityCritical
	}
	return &telemetry.InsightCard{
		Title:       fmt.Sprintf("%d of %d access points offline", offline, total),
		Explanation: fmt.Sprintf("%s%% of access points are unreachable. Coverage holes and client roaming storms are likely in the affected areas.", f1(offlinePct)),
		Evidence: []telemetry.InsightEvidence{
			ev("APs offline", strconv.Itoa(offline), ""),
			ev("APs total", strconv.Itoa(total), ""),
			ev("Offline percentage", f1(offlinePct), "%"),
		},
		Recommendation: "Check switch ports and PoE budgets feeding the offline APs before dispatching on-site support.",
		Severity:       severity,
		Impact:         clamp01(offlinePct / 100),
	}
}

func detectClientDensity(c evalContext) *telemetry.InsightCard {
	if c.snap.ClientCount == nil || c.snap.APOnlineCount == nil {
		return nil
	}
	online := *c.snap.APOnlineCount
	if online <= 0 || c.thresholds.ClientDensityPerAP <= 0 {
		return nil
	}
	perAP := float64(*c.snap.ClientCount) / float64(online)
	limit := c.cfg.DensityMultiplier * c.thresholds.ClientDensityPerAP
	if perAP <= limit {
		return nil
	}
	return &telemetry.InsightCard{
		Title:       "Client density above comfortable limit",
		Explanation: fmt.Sprintf("Each online AP is serving %s clients on average, past the %s clients/AP planning limit for this environment.", f1(perAP), f1(limit)),
		Evidence: []telemetry.InsightEvidence{
			ev("Clients per AP", f1(perAP), ""),
			ev("Density limit", f1(limit), ""),
			ev("Online APs", strconv.Itoa(online), ""),
		},
		Recommendation: "Consider adding an AP in the densest area or tightening minimum-RSSI to shed distant clients.",
		Severity:       telemetry.SeverityInfo,
		Impact:         clamp01(perAP/limit - 1),
	}
}

func detectSignalQuality(c evalContext) *telemetry.InsightCard {
	if c.snap.AvgClientRSSI == nil {
		return nil
	}
	rssi := *c.snap.AvgClientRSSI
	if rssi >= c.cfg.SignalWeakDbm {
		return nil
	}

	severity := telemetry.SeverityInfo
	if rssi < c.cfg.SignalVeryWeakDbm {
		severity = telemetry.SeverityWarning
	}
	return &telemetry.InsightCard{
		Title:       "Weak average client signal",
		Explanation: fmt.Sprintf("Clients average %s dBm, below the %s dBm comfort line. Edge-of-coverage clients will drag down airtime with low data rates.", f1(rssi), f1(c.cfg.SignalWeakDbm)),
		Evidence: []telemetry.InsightEvidence{
			ev("Average client RSSI", f1(rssi), "dBm"),
			ev("Weak-signal line", f1(c.cfg.SignalWeakDbm), "dBm"),
		},
		Recommendation: "Survey the weakest areas; a small transmit-power increase or AP relocation usually recovers several dB.",
		Severity:       severity,
		Impact:         clamp01((c.cfg.SignalWeakDbm - rssi) / 20),
	}
}

func detectTrend1h(c evalContext) *telemetry.InsightCard {
	if c.snap.RFQI == nil || c.snap.History == nil || c.snap.History.RFQI1hAgo == nil {
		return nil
	}
	change, ok := pctChange(*c.snap.RFQI, *c.snap.History.RFQI1hAgo)
	if !ok || math.Abs(change) <= c.cfg.TrendChangePct {
		return nil
	}

	direction := "improving"
	severity := telemetry.SeverityInfo
	if change < 0 {
		direction = "degrading"
		if change < -c.cfg.TrendDegradePct {
			severity = telemetry.SeverityWarning
		}
	}
	return &telemetry.InsightCard{
		Title:       fmt.Sprintf("RF quality %s over the last hour", direction),
		Explanation: fmt.Sprintf("RF quality moved %s%% in the last hour (from %s to %s). Sudden shifts usually track an environmental or configuration change.", f1(change), f1(*c.snap.History.RFQI1hAgo), f1(*c.snap.RFQI)),
		Evidence: []telemetry.InsightEvidence{
			ev("Change vs 1h ago", f1(change), "%"),
			ev("RFQI now", f1(*c.snap.RFQI), ""),
			ev("RFQI 1h ago", f1(*c.snap.History.RFQI1hAgo), ""),
		},
		Recommendation: "Correlate the inflection time with recent config pushes, firmware updates, or physical changes on site.",
		Severity:       severity,
		Impact:         clamp01(math.Abs(change) / 100),
		Trend: &telemetry.TrendInfo{
			Direction: direction,
			ChangePct: change,
			Baseline:  "1h",
		},
	}
}

func detectComparison24h(c evalContext) *telemetry.InsightCard {
	if c.snap.RFQI == nil || c.snap.History == nil || c.snap.History.RFQI24hAgo == nil {
		return nil
	}
	change, ok := pctChange(*c.snap.RFQI, *c.snap.History.RFQI24hAgo)
	if !ok || change >= -c.cfg.Comparison24hDropPct {
		return nil
	}
	return &telemetry.InsightCard{
		Title:       "RF quality below yesterday's level",
		Explanation: fmt.Sprintf("RF quality is %s%% lower than at this time yesterday (%s vs %s). The day-over-day view filters out normal hourly noise.", f1(math.Abs(change)), f1(*c.snap.RFQI), f1(*c.snap.History.RFQI24hAgo)),
		Evidence: []telemetry.InsightEvidence{
			ev("Change vs 24h ago", f1(change), "%"),
			ev("RFQI now", f1(*c.snap.RFQI), ""),
			ev("RFQI 24h ago", f1(*c.snap.History.RFQI24hAgo), ""),
		},
		Recommendation: "If the drop persists into tomorrow, treat it as a real regression rather than daily variation.",
		Severity:       telemetry.SeverityInfo,
		Impact:         clamp01(math.Abs(change) / 100),
		Trend: &telemetry.TrendInfo{
			Direction: "degrading",
			ChangePct: change,
			Baseline:  "24h",
		},
	}
}

func detectClientSurge(c evalContext) *telemetry.InsightCard {
	if c.snap.ClientCount == nil || c.snap.History == nil || c.snap.History.ClientCount1hAgo == nil {
		return nil
	}
	current := *c.snap.ClientCount
	prior := *c.snap.History.ClientCount1hAgo
	change, ok := pctChange(float64(current), float64(prior))
	if !ok {
		return nil
	}
	delta := current - prior
	if change <= c.cfg.SurgeWarnPct || delta < c.cfg.SurgeMinAbsolute {
		return nil
	}

	severity := telemetry.SeverityInfo
	if change > c.cfg.SurgeCriticalPct {
		severity = telemetry.SeverityWarning
	}
	return &telemetry.InsightCard{
		Title:       fmt.Sprintf("Client count surged %s%% in an hour", f1(change)),
		Explanation: fmt.Sprintf("Connected clients jumped from %d to %d in the last hour. Expect pressure on DHCP, airtime, and uplink capacity if the surge holds.", prior, current),
		Evidence: []telemetry.InsightEvidence{
			ev("Clients now", strconv.Itoa(current), ""),
			ev("Clients 1h ago", strconv.Itoa(prior), ""),
			ev("Change", f1(change), "%"),
		},
		Recommendation: "Verify DHCP pool headroom and watch channel utilization; surges of this size often precede congestion complaints.",
		Severity:       severity,
		Impact:         clamp01(change / 200),
	}
}

func detectAPRestarts(c evalContext) *telemetry.InsightCard {
	if len(c.snap.APs) == 0 {
		return nil
	}
	var affected []string
	for _, ap := range c.snap.APs {
		if ap.RestartCount24h != nil && *ap.RestartCount24h >= c.cfg.RestartThreshold {
			name := ap.Name
			if name == "" {
				name = ap.ID
			}
			affected = append(affected, name)
		}
	}
	if len(affected) == 0 {
		return nil
	}

	card := &telemetry.InsightCard{
		Title:       fmt.Sprintf("%d AP(s) restarting repeatedly", len(affected)),
		Explanation: fmt.Sprintf("%d access point(s) restarted %d or more times in the last 24 hours. Repeated restarts usually indicate failing power, overheating, or a firmware fault.", len(affected), c.cfg.RestartThreshold),
		Evidence: []telemetry.InsightEvidence{
			ev("APs affected", strconv.Itoa(len(affected)), ""),
			ev("Restart threshold", strconv.Itoa(c.cfg.RestartThreshold), "per 24h"),
		},
		Recommendation: "Check PoE draw and ambient temperature for the affected units; stage a firmware rollback if restarts started after an update.",
		Severity:       telemetry.SeverityWarning,
		Impact:         clamp01(float64(len(affected)) / float64(len(c.snap.APs))),
	}
	for i, name := range affected {
		if i >= 5 { // Keep evidence readable on wide outages
			break
		}
		card.Evidence = append(card.Evidence, ev("Affected AP", name, ""))
	}
	return card
}

func detectAPResources(c evalContext) *telemetry.InsightCard {
	if len(c.snap.APs) == 0 {
		return nil
	}
	var affected []string
	for _, ap := range c.snap.APs {
		stressed := (ap.MemoryPct != nil && *ap.MemoryPct > c.cfg.MemoryStressPct) ||
			(ap.CPUPct != nil && *ap.CPUPct > c.cfg.CPUStressPct)
		if stressed {
			name := ap.Name
			if name == "" {
				name = ap.ID
			}
			affected = append(affected, name)
		}
	}
	if len(affected) == 0 {
		return nil
	}

	card := &telemetry.InsightCard{
		Title:       fmt.Sprintf("%d AP(s) under resource stress", len(affected)),
		Explanation: fmt.Sprintf("%d access point(s) exceed %s%% memory or %s%% CPU. Sustained stress precedes dropped associations and eventual restarts.", len(affected), f1(c.cfg.MemoryStressPct), f1(c.cfg.CPUStressPct)),
		Evidence: []telemetry.InsightEvidence{
			ev("APs affected", strconv.Itoa(len(affected)), ""),
			ev("Memory cutoff", f1(c.cfg.MemoryStressPct), "%"),
			ev("CPU cutoff", f1(c.cfg.CPUStressPct), "%"),
		},
		Recommendation: "Rebalance clients away from the stressed units and schedule a maintenance-window reboot before they fail on their own.",
		Severity:       telemetry.SeverityWarning,
		Impact:         clamp01(float64(len(affected)) / float64(len(c.snap.APs))),
	}
	for i, name := range affected {
		if i >= 5 {
			break
		}
		card.Evidence = append(card.Evidence, ev("Affected AP", name, ""))
	}
	return card
}

func detectCapacityForecast(c evalContext) *telemetry.InsightCard {
	if c.snap.ClientCount == nil || c.snap.APOnlineCount == nil ||
		c.snap.History == nil || c.snap.History.ClientCount24hAgo == nil {
		return nil
	}
	online := *c.snap.APOnlineCount
	if online <= 0 || c.thresholds.ClientDensityPerAP <= 0 {
		return nil
	}
	current := *c.snap.ClientCount
	prior := *c.snap.History.ClientCount24hAgo
	growth, ok := pctChange(float64(current), float64(prior))
	if !ok || growth <= c.cfg.GrowthWarnPct {
		return nil
	}

	capacity := c.thresholds.ClientDensityPerAP * float64(online)
	load := float64(current) / capacity
	if load <= c.cfg.LoadRatio {
		return nil
	}

	dailyGrowth := float64(current - prior)
	if dailyGrowth <= 0 {
		return nil
	}
	daysToSaturation := (capacity - float64(current)) / dailyGrowth
	if daysToSaturation < 0 {
		daysToSaturation = 0
	}

	severity := telemetry.SeverityInfo
	if daysToSaturation <= c.cfg.SaturationWarnDays {
		severity = telemetry.SeverityWarning
	}
	return &telemetry.InsightCard{
		Title:       "Network approaching client capacity",
		Explanation: fmt.Sprintf("Client count grew %s%% in 24 hours and the network is already at %s%% of its planned capacity. At this rate, the density limit is reached in about %s day(s).", f1(growth), f1(load*100), f1(daysToSaturation)),
		Evidence: []telemetry.InsightEvidence{
			ev("24h growth", f1(growth), "%"),
			ev("Current load", f1(load*100), "% of capacity"),
			ev("Days to saturation", f1(daysToSaturation), ""),
		},
		Recommendation: "Plan additional AP capacity now; ordering and installing hardware takes longer than the forecast window.",
		Severity:       severity,
		Impact:         clamp01(growth / 100),
		Prediction: &telemetry.PredictionInfo{
			Likelihood: clamp01(load),
			Timeframe:  fmt.Sprintf("%s days", f1(daysToSaturation)),
			Basis:      "24h client growth extrapolation",
		},
	}
}
