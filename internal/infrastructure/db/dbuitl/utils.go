package dbutil

import (
	"encoding/json"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
)

// Validates time range values. A zero value means unbounded and is allowed.
func ValidateTimeRange(after, before int64) error {
	if after < 0 || before < 0 {
		return fmt.Errorf("after and before must be greater than or equal to 0")
	}
	if before > 0 && after > 0 && before <= after {
		return fmt.Errorf("before must be greater than after")
	}
	return nil
}

// InTimeRange reports whether timestamp is in [after, before), zero bounds being unbounded.
func InTimeRange(timestamp, after, before int64) bool {
	if after > 0 && timestamp < after {
		return false
	}
	if before > 0 && timestamp >= before {
		return false
	}
	return true
}

func SerializeEvent(event domain.Event) ([]byte, error) {
	return json.Marshal(event)
}

func DeserializeEvent(buf []byte) (domain.Event, error) {
	var eventType struct {
		Type domain.EventType
	}

	if err := json.Unmarshal(buf, &eventType); err != nil {
		return nil, err
	}

	switch eventType.Type {
	case domain.EventTypeIntentAdded:
		var event = domain.IntentAdded{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeBlockSealed:
		var event = domain.BlockSealed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeBlockRelayed:
		var event = domain.BlockRelayed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeBlockChallenged:
		var event = domain.BlockChallenged{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeChallengeResolved:
		var event = domain.ChallengeResolved{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeRelayerSlashed:
		var event = domain.RelayerSlashed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeAssetClaimed:
		var event = domain.AssetClaimed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeSpokeRestored:
		var event = domain.SpokeRestored{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	}

	return nil, fmt.Errorf("unknown event")
}
