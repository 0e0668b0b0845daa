// Package cmd provides CLI commands for preparing DAP reports.
//
// # Commands
//
// dap-client: Prepares a report for one measurement, then writes the encoded
// report to a file or uploads it to the task's leader.
//
//	go run ./cmd/dap-client --config=client.yaml --measurement=true
//	go run ./cmd/dap-client --config=client.yaml --vdaf=histogram --measurement=3 --upload
//
// hpke-keygen: Generates an aggregator HPKE keypair and its encoded config
// list, for local testing against dap-client.
//
//	go run ./cmd/hpke-keygen --id=1 --kem=x25519 --out=leader
//	go run ./cmd/hpke-keygen --id=2 --kem=p256 --out=helper
//
// # Configuration
//
// dap-client reads a YAML configuration file via the --config flag.
// Command-line flags override config file values.
//
//	task:
//	  task_id: "<unpadded base64url>"
//	  leader_endpoint: "http://localhost:8080/"
//	  time_precision: 3600
//	  vdaf:
//	    scheme: count
//	leader_hpke_config_list: leader.hpke
//	helper_hpke_config_list: helper.hpke
//	output: report.bin
package cmd
