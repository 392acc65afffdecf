// Package scanner re-exports the detection pipeline behind one import path,
// so hosts embedding the engine do not need to know its internal package
// split.
package scanner

import (
	"github.com/CompassSecurity/responseleak/pkg/scanner/dedupe"
	"github.com/CompassSecurity/responseleak/pkg/scanner/engine"
	"github.com/CompassSecurity/responseleak/pkg/scanner/locate"
	"github.com/CompassSecurity/responseleak/pkg/scanner/rules"
	"github.com/CompassSecurity/responseleak/pkg/scanner/types"
)

type Finding = types.Finding
type PatternSpec = types.PatternSpec
type CompiledPattern = types.CompiledPattern
type Span = types.Span

type Scanner = engine.Scanner
type Store = dedupe.Store

var NewScanner = engine.NewScanner
var NewStore = dedupe.NewStore
var Report = engine.Report

var DefaultSpecs = rules.DefaultSpecs
var LoadSpecs = rules.LoadSpecs
var DownloadSpecs = rules.DownloadSpecs
var Compile = rules.Compile
var CompileAll = rules.CompileAll

var Occurrences = locate.Occurrences
