package crypto

import (
	"fmt"

	"github.com/divviup/divviup-android/protocol"
)

// SelectConfig returns a copy of the first config in list that uses a
// supported algorithm triple. Configs are taken in list order with no other
// preference.
//
// An empty list yields protocol.ErrMissingConfigs. If no config is supported,
// the error wraps protocol.ErrUnsupportedConfig and the reason reported for the
// first config in the list.
func SelectConfig(list protocol.HpkeConfigList) (*protocol.HpkeConfig, error) {
	if len(list) == 0 {
		return nil, protocol.ErrMissingConfigs
	}

	var firstErr error
	for i := range list {
		err := IsConfigSupported(&list[i])
		if err == nil {
			selected := list[i].Clone()
			return &selected, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("HPKE config %d: %w", list[i].ID, err)
		}
	}

	return nil, fmt.Errorf("%w: %w", protocol.ErrUnsupportedConfig, firstErr)
}
