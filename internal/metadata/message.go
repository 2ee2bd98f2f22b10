package metadata

import "encoding/json"

// MessageFromRaw builds a Message from an untrusted decoded value (the output of
// encoding/json or yaml.v3 decoding into interface{}). It returns nil when raw is
// not an object. Fields of the wrong type are dropped rather than rejected.
func MessageFromRaw(raw interface{}) *Message {
	m, ok := asRecord(raw)
	if !ok {
		return nil
	}
	msg := &Message{}
	if seq, ok := asSequence(m["annotations"]); ok {
		msg.Annotations = seq
	}
	if content, ok := m["content"].(string); ok {
		msg.Content = content
	}
	return msg
}

// DecodeMessageJSON decodes a JSON document into a Message. Valid JSON that is
// not an object (null, arrays, scalars) yields a nil message and no error; only
// malformed JSON is reported.
func DecodeMessageJSON(data []byte) (*Message, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return MessageFromRaw(raw), nil
}
