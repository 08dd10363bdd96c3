package browser

// Element scripts are JavaScript function expressions called with the
// element and one JSON argument. Backends without native support for an
// element query evaluate them in the page.
const (
	// VisibleScript mirrors WebDriver's displayedness: the element and its
	// ancestors must not be hidden by display, visibility or opacity, and
	// it must take up space.
	VisibleScript = `function(el) {
	if (!el.isConnected) { return false; }
	for (var n = el; n && n.nodeType === 1; n = n.parentElement) {
		var s = window.getComputedStyle(n);
		if (s.display === 'none' || parseFloat(s.opacity) === 0) { return false; }
	}
	var style = window.getComputedStyle(el);
	if (style.visibility === 'hidden' || style.visibility === 'collapse') { return false; }
	var r = el.getBoundingClientRect();
	return r.width > 0 && r.height > 0;
}`

	// SelectedScript reports whether a checkbox, radio button or option is
	// selected.
	SelectedScript = `function(el) { return !!(el.checked || el.selected); }`

	// SubmitScript submits the form the element is in, or the element
	// itself when it is a form.
	SubmitScript = `function(el) {
	var form = el.tagName === 'FORM' ? el : el.form;
	if (!form) { throw new Error('element is not in a form'); }
	form.submit();
	return true;
}`

	// SelectOptionsScript selects the options of a select element whose
	// value, or label when arg.byLabel is set, is in arg.values. It returns
	// the values that matched no option.
	SelectOptionsScript = `function(el, arg) {
	if (el.tagName !== 'SELECT') { throw new Error('element is not a select list'); }
	var missing = [];
	arg.values.forEach(function(v) {
		var hit = false;
		for (var i = 0; i < el.options.length; i++) {
			var o = el.options[i];
			var key = arg.byLabel ? o.text.trim() : o.value;
			if (key === v) {
				o.selected = true;
				hit = true;
				if (!el.multiple) { break; }
			}
		}
		if (!hit) { missing.push(v); }
	});
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return missing;
}`

	// SelectedOptionsScript lists the selected options of a select element.
	SelectedOptionsScript = `function(el) {
	if (el.tagName !== 'SELECT') { throw new Error('element is not a select list'); }
	return Array.prototype.filter.call(el.options, function(o) { return o.selected; })
		.map(function(o) { return {label: o.text.trim(), value: o.value}; });
}`
)

// SelectArg is the argument of SelectOptionsScript.
type SelectArg struct {
	Values  []string `json:"values"`
	ByLabel bool     `json:"byLabel"`
}
