// Package mmi speaks the W3C multimodal architecture lifecycle protocol to
// the interaction manager (the fusion hub).
package mmi

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Namespaces used in lifecycle event documents.
const (
	NamespaceMMI  = "http://www.w3.org/2008/04/mmi-arch"
	NamespaceEMMA = "http://www.w3.org/2003/04/emma"
)

// Lifecycle event names.
const (
	EventNewContextRequest     = "newContextRequest"
	EventExtensionNotification = "extensionNotification"
)

// Header holds the fields identifying this modality, fixed at startup.
type Header struct {
	Source string // this modality
	Target string // the component receiving notifications
	ID     string // interaction context id
	Medium string
	Mode   string
}

// DefaultHeader is the header the gesture modality registers with.
func DefaultHeader() Header {
	return Header{
		Source: "GESTURES",
		Target: "FUSION",
		ID:     "gesture-1",
		Medium: "haptics",
		Mode:   "command",
	}
}

// LifeCycleEvents builds lifecycle event envelopes for one header.
type LifeCycleEvents struct {
	header Header
	newID  func() string
}

// NewLifeCycleEvents creates a LifeCycleEvents for header.
func NewLifeCycleEvents(header Header) *LifeCycleEvents {
	return &LifeCycleEvents{
		header: header,
		newID:  uuid.NewString,
	}
}

// Header returns the header the events are built with.
func (l *LifeCycleEvents) Header() Header {
	return l.header
}

// Envelope is one lifecycle event ready to be sent.
type Envelope struct {
	Event      string
	RequestID  string
	Header     Header
	Start      string
	End        string
	Confidence float64
	Data       string
}

// NewContextRequest builds the registration message sent once at startup.
func (l *LifeCycleEvents) NewContextRequest() Envelope {
	return Envelope{
		Event:     EventNewContextRequest,
		RequestID: l.newID(),
		Header:    l.header,
	}
}

// ExtensionNotification wraps data in an extension notification. start and
// end are the interpretation's time stamps as sent by the modality.
func (l *LifeCycleEvents) ExtensionNotification(start, end string, confidence float64, data string) Envelope {
	return Envelope{
		Event:      EventExtensionNotification,
		RequestID:  l.newID(),
		Header:     l.header,
		Start:      start,
		End:        end,
		Confidence: confidence,
		Data:       data,
	}
}

// Prefixed names are written literally; encoding/xml has no support for
// declaring a prefix and reusing it on child elements.
type xmlDocument struct {
	XMLName   xml.Name `xml:"mmi:mmi"`
	XMLNS     string   `xml:"xmlns:mmi,attr"`
	XMLNSEMMA string   `xml:"xmlns:emma,attr"`
	Version   string   `xml:"mmi:version,attr"`
	Event     xmlEvent
}

type xmlEvent struct {
	XMLName   xml.Name
	Name      string   `xml:"mmi:name,attr,omitempty"`
	Source    string   `xml:"mmi:source,attr"`
	Target    string   `xml:"mmi:target,attr"`
	Context   string   `xml:"mmi:context,attr"`
	RequestID string   `xml:"mmi:requestId,attr"`
	Data      *xmlData `xml:"mmi:data,omitempty"`
}

type xmlData struct {
	EMMA xmlEMMA `xml:"emma:emma"`
}

type xmlEMMA struct {
	Version        string            `xml:"emma:version,attr"`
	Interpretation xmlInterpretation `xml:"emma:interpretation"`
}

type xmlInterpretation struct {
	ID         string `xml:"emma:id,attr"`
	Medium     string `xml:"emma:medium,attr"`
	Mode       string `xml:"emma:mode,attr"`
	Start      string `xml:"emma:start,attr,omitempty"`
	End        string `xml:"emma:end,attr,omitempty"`
	Confidence string `xml:"emma:confidence,attr"`
	Command    string `xml:"command"`
}

// Bytes encodes the envelope as an mmi:mmi document.
func (e Envelope) Bytes() ([]byte, error) {
	doc := xmlDocument{
		XMLNS:     NamespaceMMI,
		XMLNSEMMA: NamespaceEMMA,
		Version:   "1.0",
		Event: xmlEvent{
			XMLName:   xml.Name{Local: "mmi:" + e.Event},
			Source:    e.Header.Source,
			Target:    e.Header.Target,
			Context:   e.Header.ID,
			RequestID: e.RequestID,
			Data: &xmlData{EMMA: xmlEMMA{
				Version: "1.0",
				Interpretation: xmlInterpretation{
					ID:         e.RequestID,
					Medium:     e.Header.Medium,
					Mode:       e.Header.Mode,
					Start:      e.Start,
					End:        e.End,
					Confidence: strconv.FormatFloat(e.Confidence, 'f', -1, 64),
					Command:    e.Data,
				},
			}},
		},
	}
	if e.Event == EventExtensionNotification {
		doc.Event.Name = e.Event
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Event, err)
	}
	return append([]byte(xml.Header), out...), nil
}
