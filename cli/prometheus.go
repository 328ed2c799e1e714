// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ava-labs/avalanchego/utils/perms"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/utils"
)

// Panels are the queries offered in the pre-built dashboard.
var Panels = []string{
	"increase(vaultvm_chain_txs_executed[5s])/5",
	"increase(vaultvm_chain_txs_failed[5s])/5",
	"increase(vaultvm_node_batches_built[5s])/5",
	"vaultvm_node_mempool_size",
	"increase(vaultvm_node_txs_rejected[5s])/5",
	"increase(vaultvm_node_txs_expired[5s])/5",
}

type PrometheusStaticConfig struct {
	Targets []string `yaml:"targets"`
}

type PrometheusScrapeConfig struct {
	JobName       string                    `yaml:"job_name"`
	StaticConfigs []*PrometheusStaticConfig `yaml:"static_configs"`
	MetricsPath   string                    `yaml:"metrics_path"`
}

type PrometheusConfig struct {
	Global struct {
		ScrapeInterval     string `yaml:"scrape_interval"`
		EvaluationInterval string `yaml:"evaluation_interval"`
	} `yaml:"global"`
	ScrapeConfigs []*PrometheusScrapeConfig `yaml:"scrape_configs"`
}

// GeneratePrometheus writes a scrape config for every uri of the default
// chain to [prometheusFile] and returns a dashboard link rooted at
// [baseURI].
func (h *Handler) GeneratePrometheus(baseURI string, prometheusFile string) (string, error) {
	_, uris, err := h.GetDefaultChain(true)
	if err != nil {
		return "", err
	}
	endpoints := make([]string, len(uris))
	for i, uri := range uris {
		u, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		endpoints[i] = u.Host
	}

	var prometheusConfig PrometheusConfig
	prometheusConfig.Global.ScrapeInterval = "1s"
	prometheusConfig.Global.EvaluationInterval = "1s"
	prometheusConfig.ScrapeConfigs = []*PrometheusScrapeConfig{
		{
			JobName: "vaultvm",
			StaticConfigs: []*PrometheusStaticConfig{
				{
					Targets: endpoints,
				},
			},
			MetricsPath: rpc.MetricsEndpoint,
		},
	}
	yamlData, err := yaml.Marshal(&prometheusConfig)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(prometheusFile, yamlData, perms.ReadWrite); err != nil {
		return "", err
	}

	// Prometheus skips panels that are not numerically sorted and
	// [url.Values] only sorts lexicographically.
	dashboard := baseURI + "/graph"
	for i, panel := range Panels {
		appendChar := "&"
		if i == 0 {
			appendChar = "?"
		}
		dashboard = fmt.Sprintf("%s%sg%d.expr=%s&g%d.tab=0&g%d.step_input=1&g%d.range_input=5m", dashboard, appendChar, i, url.QueryEscape(panel), i, i, i)
	}
	utils.Outf("{{green}}prometheus config:{{/}} %s\n", prometheusFile)
	utils.Outf("{{orange}}pre-built dashboard:{{/}} %s\n", dashboard)
	return dashboard, nil
}
