package protocol

// Media types of DAP HTTP payloads.
const (
	MediaTypeHpkeConfigList = "application/dap-hpke-config-list"
	MediaTypeReport         = "application/dap-report"
)

// NumAggregators is the number of aggregators of a DAP task: one leader and
// one helper.
const NumAggregators = 2

// Role identifies a protocol participant. The values are part of the HPKE
// application info and must not change.
type Role uint8

const (
	RoleCollector Role = 0
	RoleClient    Role = 1
	RoleLeader    Role = 2
	RoleHelper    Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleCollector:
		return "collector"
	case RoleClient:
		return "client"
	case RoleLeader:
		return "leader"
	case RoleHelper:
		return "helper"
	default:
		return "unknown"
	}
}
