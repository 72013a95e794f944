// Package seed loads a curriculum described in YAML into the content store.
//
// A curriculum file lists modules in display order; each module lists its
// sessions in order and each session its slide timestamps:
//
//	modules:
//	  - title: Injil Markus
//	    sessions:
//	      - title: Pasal 1
//	        youtube_url: https://youtu.be/...
//	        timestamps:
//	          - time: "0:00"
//	            slide_url: https://cdn.example.org/markus/1.png
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/belajar-alkitab-backend/internal/modules/learning/playback"
)

type Curriculum struct {
	Modules []Module `yaml:"modules"`
}

type Module struct {
	Title        string    `yaml:"title"`
	Description  string    `yaml:"description,omitempty"`
	ThumbnailURL string    `yaml:"thumbnail_url,omitempty"`
	Sessions     []Session `yaml:"sessions,omitempty"`
}

type Session struct {
	Title               string      `yaml:"title"`
	Description         string      `yaml:"description,omitempty"`
	ThumbnailURL        string      `yaml:"thumbnail_url,omitempty"`
	YoutubeURL          string      `yaml:"youtube_url,omitempty"`
	SlidesURL           string      `yaml:"slides_url,omitempty"`
	TeacherNotes        string      `yaml:"teacher_notes,omitempty"`
	ReflectionQuestions []string    `yaml:"reflection_questions,omitempty"`
	Timestamps          []Timestamp `yaml:"timestamps,omitempty"`
}

// Timestamp takes its position from Time ("m:ss") or Seconds.
type Timestamp struct {
	Time     string `yaml:"time,omitempty"`
	Seconds  *int   `yaml:"seconds,omitempty"`
	SlideURL string `yaml:"slide_url,omitempty"`
}

// Position returns the timestamp offset in seconds.
func (t Timestamp) Position() (int, error) {
	if strings.TrimSpace(t.Time) != "" {
		return playback.ParseMMSS(t.Time)
	}
	if t.Seconds == nil {
		return 0, errors.New("time or seconds is required")
	}
	if *t.Seconds < 0 {
		return 0, fmt.Errorf("seconds must not be negative, got %d", *t.Seconds)
	}
	return *t.Seconds, nil
}

// Parse decodes a curriculum, rejecting unknown fields.
func Parse(r io.Reader) (*Curriculum, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Curriculum
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	return &c, nil
}

// Validate reports every problem in the curriculum, each prefixed with its
// path (modules[0].sessions[2].timestamps[1]).
func (c *Curriculum) Validate() error {
	if c == nil {
		return errors.New("curriculum is empty")
	}
	var errs []error
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	seenModules := map[string]int{}
	for mi, m := range c.Modules {
		mp := fmt.Sprintf("modules[%d]", mi)
		title := strings.TrimSpace(m.Title)
		if title == "" {
			addf("%s: title is required", mp)
		} else if prev, ok := seenModules[strings.ToLower(title)]; ok {
			addf("%s: title %q duplicates modules[%d]", mp, title, prev)
		} else {
			seenModules[strings.ToLower(title)] = mi
		}
		for si, s := range m.Sessions {
			sp := fmt.Sprintf("%s.sessions[%d]", mp, si)
			if strings.TrimSpace(s.Title) == "" {
				addf("%s: title is required", sp)
			}
			positions := map[int]int{}
			for ti, ts := range s.Timestamps {
				tp := fmt.Sprintf("%s.timestamps[%d]", sp, ti)
				pos, err := ts.Position()
				if err != nil {
					addf("%s: %v", tp, err)
					continue
				}
				if prev, ok := positions[pos]; ok {
					addf("%s: position %s duplicates timestamps[%d]", tp, playback.FormatSeconds(pos), prev)
					continue
				}
				positions[pos] = ti
			}
		}
	}
	return errors.Join(errs...)
}

// Counts returns the number of modules, sessions and timestamps.
func (c *Curriculum) Counts() (modules, sessions, timestamps int) {
	if c == nil {
		return 0, 0, 0
	}
	for _, m := range c.Modules {
		modules++
		for _, s := range m.Sessions {
			sessions++
			timestamps += len(s.Timestamps)
		}
	}
	return modules, sessions, timestamps
}
